package engine

import (
	"strings"

	"github.com/vantell/gridkit/internal/schema"
)

// Filter returns the subset of rows matching the rule list. Rules combine
// left-to-right: the first rule seeds the accumulator, every later rule folds
// in via its own conjunction. Mixed and/or chains therefore apply in strict
// left-to-right order, not with the usual AND-over-OR precedence. That is
// intentional and matched by the tests; do not "fix" it.
func Filter(rows []schema.Row, rules []schema.FilterRule, s *schema.Schema) []schema.Row {
	if len(rules) == 0 {
		out := make([]schema.Row, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]schema.Row, 0, len(rows))
	for _, r := range rows {
		if matchesRules(r, rules, s) {
			out = append(out, r)
		}
	}
	return out
}

func matchesRules(row schema.Row, rules []schema.FilterRule, s *schema.Schema) bool {
	acc := false
	for i, rule := range rules {
		m := matchesRule(row, rule, s)
		if i == 0 {
			acc = m
			continue
		}
		if rule.Conjunction == schema.ConjunctionOr {
			acc = acc || m
		} else {
			acc = acc && m
		}
	}
	return acc
}

func matchesRule(row schema.Row, rule schema.FilterRule, s *schema.Schema) bool {
	cell := s.CellValue(row, rule.Field)
	cellStr := strings.ToLower(schema.Stringify(cell))
	want := strings.ToLower(rule.Value)

	switch rule.Operator {
	case schema.OpContains:
		return strings.Contains(cellStr, want)
	case schema.OpDoesNotContain:
		return !strings.Contains(cellStr, want)
	case schema.OpIs:
		return cellStr == want
	case schema.OpIsNot:
		return cellStr != want
	case schema.OpIsEmpty:
		return schema.IsEmptyValue(cell)
	case schema.OpIsNotEmpty:
		return !schema.IsEmptyValue(cell)
	}
	return false
}
