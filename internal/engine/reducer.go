package engine

import "github.com/vantell/gridkit/internal/schema"

// RuleChangeKind enumerates the rule model mutations.
type RuleChangeKind string

const (
	SetFilter    RuleChangeKind = "set_filter"
	RemoveFilter RuleChangeKind = "remove_filter"
	ClearFilters RuleChangeKind = "clear_filters"
	SetSort      RuleChangeKind = "set_sort"
	RemoveSort   RuleChangeKind = "remove_sort"
	ClearSorts   RuleChangeKind = "clear_sorts"
	SetGroup     RuleChangeKind = "set_group"
	RemoveGroup  RuleChangeKind = "remove_group"
	ClearGroups  RuleChangeKind = "clear_groups"
	SetRowOrder  RuleChangeKind = "set_row_order"
)

// RuleChange is one edit to the rule model. Filter is used by the filter
// kinds, Rule by the sort/group kinds, RuleID by the remove kinds, RowOrder
// by SetRowOrder.
type RuleChange struct {
	Kind     RuleChangeKind
	Filter   schema.FilterRule
	Rule     schema.SortRule
	RuleID   string
	RowOrder []string
}

// ApplyRuleChange folds one change into the rule model and returns the new
// model. Filter edits honour column dependencies: an exact-match filter on a
// child column injects (or overwrites) the implied exact-match filter on its
// resolved parent, walking the whole ancestor chain; removing a parent's
// exact-match filter cascades removal of every filter on columns that depend
// on it.
func ApplyRuleChange(r Rules, ch RuleChange, s *schema.Schema) Rules {
	out := cloneRules(r)
	switch ch.Kind {
	case SetFilter:
		out.Filter = upsertFilter(out.Filter, ch.Filter)
		out.Filter = propagateParentFilters(out.Filter, ch.Filter, s)
	case RemoveFilter:
		out.Filter = removeFilterCascade(out.Filter, ch.RuleID, s)
	case ClearFilters:
		out.Filter = nil
	case SetSort:
		out.Sort = upsertRule(out.Sort, ch.Rule)
	case RemoveSort:
		out.Sort = removeRule(out.Sort, ch.RuleID)
	case ClearSorts:
		out.Sort = nil
	case SetGroup:
		out.Group = upsertRule(out.Group, ch.Rule)
	case RemoveGroup:
		out.Group = removeRule(out.Group, ch.RuleID)
	case ClearGroups:
		out.Group = nil
	case SetRowOrder:
		out.RowOrder = append([]string(nil), ch.RowOrder...)
	}
	return out
}

func cloneRules(r Rules) Rules {
	return Rules{
		Filter:   append([]schema.FilterRule(nil), r.Filter...),
		Sort:     append([]schema.SortRule(nil), r.Sort...),
		Group:    append([]schema.GroupRule(nil), r.Group...),
		RowOrder: append([]string(nil), r.RowOrder...),
	}
}

func upsertFilter(rules []schema.FilterRule, rule schema.FilterRule) []schema.FilterRule {
	for i := range rules {
		if rules[i].ID == rule.ID {
			rules[i] = rule
			return rules
		}
	}
	return append(rules, rule)
}

func upsertRule(rules []schema.SortRule, rule schema.SortRule) []schema.SortRule {
	for i := range rules {
		if rules[i].ID == rule.ID {
			rules[i] = rule
			return rules
		}
	}
	return append(rules, rule)
}

func removeRule(rules []schema.SortRule, id string) []schema.SortRule {
	out := rules[:0]
	for _, r := range rules {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// propagateParentFilters walks a child column's dependency chain upward,
// injecting or overwriting the implied "is" filter on each ancestor.
func propagateParentFilters(rules []schema.FilterRule, rule schema.FilterRule, s *schema.Schema) []schema.FilterRule {
	if rule.Operator != schema.OpIs {
		return rules
	}
	col, ok := s.Column(rule.Field)
	if !ok {
		return rules
	}
	value := rule.Value
	for col.DependsOn != nil {
		parentKey := col.DependsOn.ParentKey
		parentValue := value
		if col.DependsOn.ResolveParent != nil {
			parentValue = col.DependsOn.ResolveParent(value)
		}
		rules = setFieldIsFilter(rules, parentKey, parentValue)
		next, ok := s.Column(parentKey)
		if !ok {
			break
		}
		col, value = next, parentValue
	}
	return rules
}

func setFieldIsFilter(rules []schema.FilterRule, field, value string) []schema.FilterRule {
	for i := range rules {
		if rules[i].Field == field && rules[i].Operator == schema.OpIs {
			rules[i].Value = value
			return rules
		}
	}
	return append(rules, schema.NewFilterRule(field, schema.OpIs, value, schema.ConjunctionAnd))
}

func removeFilterCascade(rules []schema.FilterRule, id string, s *schema.Schema) []schema.FilterRule {
	var removed *schema.FilterRule
	kept := make([]schema.FilterRule, 0, len(rules))
	for _, r := range rules {
		if r.ID == id {
			rr := r
			removed = &rr
			continue
		}
		kept = append(kept, r)
	}
	if removed == nil || removed.Operator != schema.OpIs {
		return kept
	}
	dependents := map[string]bool{}
	for _, k := range s.Dependents(removed.Field) {
		dependents[k] = true
	}
	if len(dependents) == 0 {
		return kept
	}
	out := kept[:0]
	for _, r := range kept {
		if !dependents[r.Field] {
			out = append(out, r)
		}
	}
	return out
}
