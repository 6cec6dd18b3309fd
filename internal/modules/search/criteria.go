package search

import (
	"net/url"
	"strings"
)

// CriteriaFromValues reads criteria from URL query parameters. The quick
// filter falls back to AllNeighborhoods unless it is given explicitly.
func CriteriaFromValues(v url.Values) Criteria {
	first := func(keys ...string) string {
		for _, k := range keys {
			if s := strings.TrimSpace(v.Get(k)); s != "" {
				return s
			}
		}
		return ""
	}

	c := Criteria{
		Neighborhood: first("neighborhood", "filter"),
		Purpose:      first("purpose"),
		Type:         first("type"),
		City:         first("city"),
		Query:        first("query", "q"),
	}
	if c.Neighborhood == "" {
		c.Neighborhood = AllNeighborhoods
	}
	return c
}

// IsSearch reports whether any URL-driven criterion is active, as opposed to
// browsing with at most a quick filter.
func (c Criteria) IsSearch() bool {
	return c.Purpose != "" || c.Type != "" || c.City != "" || c.Query != ""
}
