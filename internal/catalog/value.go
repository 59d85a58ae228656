package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies what a Value holds
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a scalar field copied from a source record. Source exports mix
// numbers and strings for the same column, so the original form is kept and
// coercion happens through String and Float.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Empty is the value of an absent or null field
var Empty = Value{}

// String builds a string value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number builds a numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool builds a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind returns the value kind
func (v Value) Kind() Kind {
	return v.kind
}

// IsBlank reports whether the value is absent or the empty string
func (v Value) IsBlank() bool {
	return v.kind == KindEmpty || (v.kind == KindString && v.str == "")
}

// String returns the literal form of the value
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Float coerces the value to a number. Blank strings coerce to zero; the
// second result is false when the value is not numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		return parseNumeric(v.str)
	default:
		return 0, true
	}
}

// FloatOr returns the numeric value or fallback when the value is not numeric
func (v Value) FloatOr(fallback float64) float64 {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) {
		return fallback
	}
	return f
}

// MarshalJSON writes the value in its original JSON form
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return json.Marshal(v.String())
		}
		return []byte(formatNumber(v.num)), nil
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte(`""`), nil
	}
}

// UnmarshalJSON accepts any JSON scalar; arrays and objects keep their text
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromJSON(raw)
	return nil
}

// FromJSON converts a decoded JSON value (decoded with UseNumber) into a Value
func FromJSON(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Empty
	case string:
		return String(t)
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case bool:
		return Bool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return Empty
		}
		return String(string(data))
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range literals still carry a sign and magnitude
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}
