package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultUnknownCompany labels ids with no directory entry
const DefaultUnknownCompany = "Desconhecida"

type companyEntry struct {
	id   float64
	name string
}

// CompanyDirectory resolves numeric company ids to display names.
// Lookup is total: unknown or non-numeric ids resolve to the unknown label.
type CompanyDirectory struct {
	entries []companyEntry
	unknown string
}

// DefaultCompanies returns the directory used by the exported snapshots
func DefaultCompanies() CompanyDirectory {
	return NewCompanyDirectory(map[string]string{
		"1": "Machado",
		"2": "Cardoso",
	}, DefaultUnknownCompany)
}

// NewCompanyDirectory builds a directory from id -> name pairs. Keys that are
// not numeric are ignored.
func NewCompanyDirectory(names map[string]string, unknown string) CompanyDirectory {
	if unknown == "" {
		unknown = DefaultUnknownCompany
	}

	dir := CompanyDirectory{unknown: unknown}
	for key, name := range names {
		id, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			continue
		}
		dir.entries = append(dir.entries, companyEntry{id: id, name: name})
	}
	sort.Slice(dir.entries, func(i, j int) bool {
		return dir.entries[i].id < dir.entries[j].id
	})
	return dir
}

// Resolve returns the display name for a raw company id value
func (d CompanyDirectory) Resolve(id Value) string {
	if id.Kind() == KindEmpty {
		return d.Unknown()
	}
	n, ok := id.Float()
	if !ok {
		return d.Unknown()
	}
	for _, e := range d.entries {
		if e.id == n {
			return e.name
		}
	}
	return d.Unknown()
}

// Unknown returns the label for unresolved ids
func (d CompanyDirectory) Unknown() string {
	if d.unknown == "" {
		return DefaultUnknownCompany
	}
	return d.unknown
}
