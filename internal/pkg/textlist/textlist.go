// Package textlist handles the comma separated lists typed into admin forms
// and environment variables.
package textlist

import "strings"

// Split breaks s on commas, trimming each item and dropping empty ones.
func Split(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Join is the inverse of Split for display in a text field.
func Join(items []string) string {
	return strings.Join(items, ", ")
}
