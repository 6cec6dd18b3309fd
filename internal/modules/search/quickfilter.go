package search

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"realtysite/internal/domain"
)

// DefaultStoplist holds the generic place names that never make a useful
// quick filter on their own.
var DefaultStoplist = []string{"brasília", "brasilia", "df", "distrito federal"}

// QuickFilterOptions derives the neighborhood tabs from the catalog: for each
// location, the first comma separated token not in the stoplist (or the first
// token when all are stoplisted). The result is distinct, sorted for pt-BR and
// led by AllNeighborhoods.
func QuickFilterOptions(props []domain.Property, stoplist []string) []string {
	fold := cases.Fold()
	stop := make(map[string]bool, len(stoplist))
	for _, s := range stoplist {
		stop[fold.String(strings.TrimSpace(s))] = true
	}

	set := make(map[string]struct{})
	for _, p := range props {
		if token, ok := specificLocation(p.Location, stop, fold); ok {
			set[token] = struct{}{}
		}
	}

	options := maps.Keys(set)
	collate.New(language.BrazilianPortuguese).SortStrings(options)
	return append([]string{AllNeighborhoods}, options...)
}

func specificLocation(location string, stop map[string]bool, fold cases.Caser) (string, bool) {
	if strings.TrimSpace(location) == "" {
		return "", false
	}
	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for _, part := range parts {
		if part != "" && !stop[fold.String(part)] {
			return part, true
		}
	}
	return parts[0], parts[0] != ""
}
