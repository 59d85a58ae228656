// Package locale formats catalog values for pt-BR display.
package locale

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/NeverVane/stockcatalog/internal/catalog"
)

const (
	currencyDigits = 2
	numberDigits   = 3

	// symbol and amount are joined by a no-break space
	currencyPrefix = "R$\u00a0"
)

// Currency formats a value as BRL ("R$ 1.234,50"). Blank values give "" and
// non-numeric values are returned as their literal text.
func Currency(v catalog.Value) string {
	f, ok := numeric(v)
	if !ok {
		return v.String()
	}
	if math.IsInf(f, 0) {
		return signOf(f) + currencyPrefix + "∞"
	}

	whole, frac := roundDecimal(math.Abs(f), currencyDigits)
	if f < 0 && !isZero(whole, frac) {
		return "-" + currencyPrefix + group(whole) + "," + frac
	}
	return currencyPrefix + group(whole) + "," + frac
}

// Number formats a value with grouping and up to three fraction digits
// ("1.234,5"). Blank and non-numeric values follow the Currency rules.
func Number(v catalog.Value) string {
	f, ok := numeric(v)
	if !ok {
		return v.String()
	}
	if math.IsInf(f, 0) {
		return signOf(f) + "∞"
	}

	whole, frac := roundDecimal(math.Abs(f), numberDigits)
	frac = strings.TrimRight(frac, "0")

	out := group(whole)
	if frac != "" {
		out += "," + frac
	}
	if f < 0 && !isZero(whole, frac) {
		return "-" + out
	}
	return out
}

// roundDecimal rounds a non-negative value to digits fraction digits, half
// away from zero, working on its shortest decimal text so 1.005 rounds to
// 1.01. frac always has exactly digits characters.
func roundDecimal(f float64, digits int) (whole, frac string) {
	text := strconv.FormatFloat(f, 'f', -1, 64)
	whole, frac, _ = strings.Cut(text, ".")

	if len(frac) <= digits {
		return whole, frac + strings.Repeat("0", digits-len(frac))
	}

	roundUp := frac[digits] >= '5'
	n, ok := new(big.Int).SetString(whole+frac[:digits], 10)
	if !ok {
		return whole, frac[:digits]
	}
	if roundUp {
		n.Add(n, big.NewInt(1))
	}

	s := n.String()
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	return s[:len(s)-digits], s[len(s)-digits:]
}

// group inserts "." thousands separators into a digit string
func group(whole string) string {
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return whole
	}
	return strings.ReplaceAll(humanize.BigComma(n), ",", ".")
}

func isZero(whole, frac string) bool {
	return strings.Trim(whole+frac, "0") == ""
}

// numeric reports the number to format; false means the caller should fall
// back to the literal text (which is "" for blank values).
func numeric(v catalog.Value) (float64, bool) {
	if v.IsBlank() {
		return 0, false
	}
	f, ok := v.Float()
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func signOf(f float64) string {
	if f < 0 {
		return "-"
	}
	return ""
}
