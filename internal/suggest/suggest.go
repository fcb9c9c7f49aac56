// Package suggest ranks known names by edit distance to a typed one.
package suggest

import (
	"sort"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// DefaultMaxDistance is the smallest cutoff Threshold returns.
const DefaultMaxDistance = 2

// Threshold is the largest distance worth suggesting for typed: two edits,
// or half the typed length for longer names.
func Threshold(typed string) int {
	n := (utf8.RuneCountInString(typed) + 1) / 2
	if n < DefaultMaxDistance {
		return DefaultMaxDistance
	}
	return n
}

// Match is a candidate and its distance from the typed text.
type Match struct {
	Name     string
	Distance int
}

// Distance is the Levenshtein distance with unit costs.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// Near returns candidates within max of typed, closest first. Ties keep
// candidate order. Exact matches are not suggestions and are left out.
func Near(candidates []string, typed string, max int) []Match {
	var out []Match
	for _, c := range candidates {
		d := Distance(c, typed)
		if d == 0 || d > max {
			continue
		}
		out = append(out, Match{Name: c, Distance: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}
