package locale

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/NeverVane/stockcatalog/internal/catalog"
)

const (
	dateTimeLayout = "02/01/2006, 15:04:05"
	dateLayout     = "02/01/2006"
)

// Layouts without a zone are read in the display location; a bare date is UTC midnight.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// Timestamp is a parsed updated_at value together with its source text
type Timestamp struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// ParseTimestamp reads an updated_at value. Strings are read as ISO-8601
// date-times and numbers as epoch milliseconds. Anything else, including an
// absent value, is kept only as raw text.
func ParseTimestamp(raw interface{}, loc *time.Location) Timestamp {
	if loc == nil {
		loc = time.Local
	}

	switch v := raw.(type) {
	case nil:
		return Timestamp{}
	case string:
		ts := Timestamp{Raw: v}
		if t, ok := parseISO(strings.TrimSpace(v), loc); ok {
			ts.Time, ts.Valid = t, true
		}
		return ts
	case json.Number:
		return fromMillis(v.String())
	case float64:
		return fromMillis(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return Timestamp{Raw: catalog.FromJSON(raw).String()}
	}
}

// DateTime returns "dd/mm/yyyy, HH:MM:SS" in loc, or the raw text when invalid
func (t Timestamp) DateTime(loc *time.Location) string {
	if !t.Valid {
		return t.Raw
	}
	return t.Time.In(orLocal(loc)).Format(dateTimeLayout)
}

// Date returns "dd/mm/yyyy" in loc, or the raw text when invalid
func (t Timestamp) Date(loc *time.Location) string {
	if !t.Valid {
		return t.Raw
	}
	return t.Time.In(orLocal(loc)).Format(dateLayout)
}

func parseISO(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func fromMillis(text string) Timestamp {
	ts := Timestamp{Raw: text}
	ms, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return ts
	}
	ts.Time = time.UnixMilli(int64(ms))
	ts.Valid = true
	return ts
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
