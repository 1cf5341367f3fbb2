// Package symbol normalizes ticker strings into cache and panel keys.
package symbol

import "strings"

// Normalize trims surrounding whitespace and upper-cases a ticker.
// An empty result means the input was not a usable symbol.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// Unique normalizes every value, drops empties and duplicates, and keeps
// first-seen order.
func Unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		sym := Normalize(v)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// Contains reports whether list holds the normalized form of value.
func Contains(list []string, value string) bool {
	sym := Normalize(value)
	for _, s := range list {
		if s == sym {
			return true
		}
	}
	return false
}
