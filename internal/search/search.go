// Package search filters the loaded rows by product code or description.
package search

import (
	"regexp"
	"strings"

	"github.com/NeverVane/stockcatalog/internal/catalog"
)

// Kind is how a query is matched against rows
type Kind int

const (
	// KindNone matches nothing: the query was blank after trimming
	KindNone Kind = iota
	// KindCode matches the product id exactly
	KindCode
	// KindDescription matches a case-insensitive description substring
	KindDescription
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindDescription:
		return "description"
	default:
		return "none"
	}
}

// DescriptionPrefix forces a description query even for digit-only input
const DescriptionPrefix = "%"

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Query is a classified search string
type Query struct {
	Kind Kind

	// Trimmed input as typed
	Raw string

	// Match text: the code for code queries, the lower-cased fragment for
	// description queries
	Text string
}

// Classify decides how raw is matched. Input that is all digits is a code
// query unless it starts with "%"; everything else is a description query.
func Classify(raw string) Query {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{Kind: KindNone}
	}

	isNumeric := digitsOnly.MatchString(trimmed)
	prefixed := strings.HasPrefix(trimmed, DescriptionPrefix)

	if !prefixed && isNumeric {
		return Query{Kind: KindCode, Raw: trimmed, Text: trimmed}
	}

	text := trimmed
	if prefixed {
		text = strings.TrimSpace(strings.TrimPrefix(trimmed, DescriptionPrefix))
	}
	text = strings.ToLower(text)
	if text == "" {
		return Query{Kind: KindNone, Raw: trimmed}
	}
	return Query{Kind: KindDescription, Raw: trimmed, Text: text}
}

// Matches reports whether row satisfies the query
func (q Query) Matches(row catalog.Row) bool {
	switch q.Kind {
	case KindCode:
		return row.ProductID.String() == q.Text
	case KindDescription:
		return strings.Contains(strings.ToLower(row.Description), q.Text)
	default:
		return false
	}
}

// Search returns the rows matching raw in their original order. A blank
// query matches nothing. rows is never modified.
func Search(raw string, rows []catalog.Row) []catalog.Row {
	return Filter(Classify(raw), rows)
}

// Filter returns the rows matching an already classified query
func Filter(q Query, rows []catalog.Row) []catalog.Row {
	matches := make([]catalog.Row, 0)
	if q.Kind == KindNone {
		return matches
	}
	for _, row := range rows {
		if q.Matches(row) {
			matches = append(matches, row)
		}
	}
	return matches
}
