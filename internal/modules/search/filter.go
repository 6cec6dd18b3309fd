// Package search narrows the property catalog for a view. Everything here is
// a pure function of its inputs.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"realtysite/internal/domain"
)

// AllNeighborhoods is the quick-filter option that disables the
// neighborhood criterion.
const AllNeighborhoods = "Todos"

// Criteria are conjunctive. Empty fields are skipped.
type Criteria struct {
	Neighborhood string `json:"neighborhood,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	Type         string `json:"type,omitempty"`
	City         string `json:"city,omitempty"`
	Query        string `json:"query,omitempty"`
}

func (c Criteria) IsZero() bool {
	return c.neighborhood() == "" && c.Purpose == "" && c.Type == "" && c.City == "" && c.Query == ""
}

func (c Criteria) neighborhood() string {
	if c.Neighborhood == AllNeighborhoods {
		return ""
	}
	return c.Neighborhood
}

// Filter returns the properties passing every active criterion, in input
// order. With no active criterion the input slice is returned as is.
func Filter(props []domain.Property, c Criteria) []domain.Property {
	if c.IsZero() {
		return props
	}

	m := newMatcher(c)
	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether p passes every active criterion of c.
func Match(p domain.Property, c Criteria) bool {
	return newMatcher(c).match(p)
}

type matcher struct {
	fold         cases.Caser
	neighborhood string
	purpose      string
	typ          string
	city         string
	query        string
}

func newMatcher(c Criteria) *matcher {
	m := &matcher{
		fold:    cases.Fold(),
		purpose: c.Purpose,
		typ:     c.Type,
	}
	m.neighborhood = m.fold.String(c.neighborhood())
	m.city = m.fold.String(c.City)
	m.query = m.fold.String(c.Query)
	return m
}

func (m *matcher) contains(s, folded string) bool {
	return strings.Contains(m.fold.String(s), folded)
}

func (m *matcher) match(p domain.Property) bool {
	if m.neighborhood != "" && !m.contains(p.Location, m.neighborhood) {
		return false
	}
	if m.purpose != "" && string(p.Purpose) != m.purpose {
		return false
	}
	if m.typ != "" && string(p.Type) != m.typ {
		return false
	}
	if m.city != "" && !m.contains(p.City, m.city) {
		return false
	}
	if m.query != "" &&
		!m.contains(p.Title, m.query) &&
		!m.contains(p.Location, m.query) &&
		!m.contains(p.Description, m.query) {
		return false
	}
	return true
}
