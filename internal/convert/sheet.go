package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Field is one column of a converted record
type Field struct {
	Key   string
	Value interface{}
}

// Record is a converted spreadsheet row with columns in sheet order
type Record []Field

// SanitizeName keeps letters, digits, "-" and "_", replaces everything else
// with "_" and strips leading and trailing underscores.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// DedupeKeys sanitizes header names and suffixes repeats with _1, _2, ...
// A header that sanitizes to nothing becomes "col".
func DedupeKeys(headers []string) []string {
	seen := make(map[string]int, len(headers))
	keys := make([]string, 0, len(headers))
	for _, h := range headers {
		base := SanitizeName(h)
		if base == "" {
			base = "col"
		}
		count := seen[base]
		if count == 0 {
			keys = append(keys, base)
		} else {
			keys = append(keys, fmt.Sprintf("%s_%d", base, count))
		}
		seen[base] = count + 1
	}
	return keys
}

// isoDateTime is the layout date cells are exported with
const isoDateTime = "2006-01-02T15:04:05"

// sheetReader reads typed cells from one sheet
type sheetReader struct {
	f        *excelize.File
	sheet    string
	rows     [][]string
	date1904 bool

	// style index -> number format shows a date or time
	dateStyles map[int]bool
}

// readSheet converts the rows below headerRow into records. Rows shorter
// than the widest row are padded with nulls.
func readSheet(f *excelize.File, sheet string, headerRow int) ([]Record, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(rows) == 0 || width == 0 || headerRow >= len(rows) {
		return []Record{}, nil
	}

	sr := &sheetReader{
		f:          f,
		sheet:      sheet,
		rows:       rows,
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sr.date1904 = *props.Date1904
	}

	headers := make([]string, width)
	for c := 0; c < width; c++ {
		v, err := sr.typedCell(headerRow, c)
		if err != nil {
			return nil, err
		}
		if v == nil {
			headers[c] = fmt.Sprintf("col_%d", c+1)
		} else {
			headers[c] = literal(v)
		}
	}
	keys := DedupeKeys(headers)

	records := make([]Record, 0, len(rows)-headerRow-1)
	for r := headerRow + 1; r < len(rows); r++ {
		rec := make(Record, width)
		for c := 0; c < width; c++ {
			v, err := sr.typedCell(r, c)
			if err != nil {
				return nil, err
			}
			rec[c] = Field{Key: keys[c], Value: v}
		}
		records = append(records, rec)
	}
	return records, nil
}

// typedCell returns nil, bool, int64, float64 or string for a cell. Numbers
// under a date or time format become ISO 8601 text.
func (sr *sheetReader) typedCell(r, c int) (interface{}, error) {
	if c >= len(sr.rows[r]) || sr.rows[r][c] == "" {
		return nil, nil
	}
	raw := sr.rows[r][c]

	ref, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return nil, err
	}
	cellType, err := sr.f.GetCellType(sr.sheet, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell %s!%s: %w", sr.sheet, ref, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeError:
		return nil, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, ok := number(raw)
		if !ok {
			return raw, nil
		}
		isDate, err := sr.isDateCell(ref)
		if err != nil {
			return nil, err
		}
		if isDate {
			if t, err := excelize.ExcelDateToTime(toFloat(n), sr.date1904); err == nil {
				return t.Format(isoDateTime), nil
			}
		}
		return n, nil
	default:
		return raw, nil
	}
}

func (sr *sheetReader) isDateCell(ref string) (bool, error) {
	idx, err := sr.f.GetCellStyle(sr.sheet, ref)
	if err != nil {
		return false, fmt.Errorf("failed to read style of %s!%s: %w", sr.sheet, ref, err)
	}
	if idx == 0 {
		return false, nil
	}
	if isDate, ok := sr.dateStyles[idx]; ok {
		return isDate, nil
	}

	isDate := false
	if style, err := sr.f.GetStyle(idx); err == nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	sr.dateStyles[idx] = isDate
	return isDate, nil
}

// isBuiltInDateFormat reports the built-in number format ids that show a
// date or time, including the East Asian locale ranges.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	default:
		return false
	}
}

// isDateFormatCode reports whether a custom format code renders a date or
// time. Quoted text, escaped characters and bracketed sections such as
// colors or locales are ignored; only the first section counts.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if code == "general" {
		return false
	}

	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			// elapsed time sections like [h] and [mm] are dates too
			if end := strings.IndexByte(code[i:], ']'); end > 0 && isElapsed(code[i+1:i+end]) {
				return true
			}
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		case ch == ';':
			return false
		case strings.IndexByte("ymdhs", ch) >= 0:
			return true
		}
	}
	return false
}

func isElapsed(s string) bool {
	return s != "" && strings.Trim(s, "hms") == ""
}

func toFloat(n interface{}) float64 {
	switch v := n.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// number parses a stored numeric value, giving int64 for integral values
func number(raw string) (interface{}, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return int64(f), true
	}
	return f, true
}

func literal(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(v)
	}
}
