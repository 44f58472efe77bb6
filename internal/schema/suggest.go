package schema

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// nearestKeyMaxDistance bounds how far a typo can be from a real key before
// we stop suggesting anything.
const nearestKeyMaxDistance = 3

// NearestKey returns the column key closest to the given (presumably
// misspelled) key, for use in diagnostics when a rule references a column
// that does not exist. Returns "" when nothing is plausibly close.
func (s *Schema) NearestKey(key string) string {
	if _, ok := s.byKey[key]; ok {
		return key
	}
	lower := strings.ToLower(key)
	best, bestDist := "", nearestKeyMaxDistance+1
	for _, c := range s.columns {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c.Key))
		if d < bestDist {
			best, bestDist = c.Key, d
		}
	}
	return best
}
