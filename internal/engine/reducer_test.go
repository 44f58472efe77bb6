package engine

import (
	"testing"

	"github.com/vantell/gridkit/internal/schema"
)

func findFilter(rules []schema.FilterRule, field string) *schema.FilterRule {
	for i := range rules {
		if rules[i].Field == field {
			return &rules[i]
		}
	}
	return nil
}

func TestSetFilterUpsertsByID(t *testing.T) {
	s := testSchema(t)
	rule := schema.FilterRule{ID: "f1", Field: "owner", Operator: schema.OpContains, Value: "ali"}
	r := ApplyRuleChange(Rules{}, RuleChange{Kind: SetFilter, Filter: rule}, s)
	if len(r.Filter) != 1 {
		t.Fatalf("got %d filters, want 1", len(r.Filter))
	}
	rule.Value = "bob"
	r = ApplyRuleChange(r, RuleChange{Kind: SetFilter, Filter: rule}, s)
	if len(r.Filter) != 1 || r.Filter[0].Value != "bob" {
		t.Fatalf("upsert by id failed: %+v", r.Filter)
	}
}

func TestChildIsFilterInjectsParentFilter(t *testing.T) {
	s := testSchema(t)
	child := schema.FilterRule{ID: "f1", Field: "adgroup", Operator: schema.OpIs, Value: "summer-a"}
	r := ApplyRuleChange(Rules{}, RuleChange{Kind: SetFilter, Filter: child}, s)

	parent := findFilter(r.Filter, "campaign")
	if parent == nil {
		t.Fatalf("no campaign filter injected: %+v", r.Filter)
	}
	if parent.Operator != schema.OpIs || parent.Value != "summer" {
		t.Fatalf("parent filter = %+v, want is summer", parent)
	}
}

func TestChildIsFilterOverwritesExistingParentFilter(t *testing.T) {
	s := testSchema(t)
	existing := schema.FilterRule{ID: "p1", Field: "campaign", Operator: schema.OpIs, Value: "winter"}
	r := Rules{Filter: []schema.FilterRule{existing}}
	child := schema.FilterRule{ID: "f1", Field: "adgroup", Operator: schema.OpIs, Value: "summer-b"}
	r = ApplyRuleChange(r, RuleChange{Kind: SetFilter, Filter: child}, s)

	parent := findFilter(r.Filter, "campaign")
	if parent == nil || parent.Value != "summer" {
		t.Fatalf("parent filter not overwritten: %+v", r.Filter)
	}
	if parent.ID != "p1" {
		t.Fatalf("overwrite should reuse the existing rule, got id %q", parent.ID)
	}
}

func TestNonIsChildFilterDoesNotPropagate(t *testing.T) {
	s := testSchema(t)
	child := schema.FilterRule{ID: "f1", Field: "adgroup", Operator: schema.OpContains, Value: "summer"}
	r := ApplyRuleChange(Rules{}, RuleChange{Kind: SetFilter, Filter: child}, s)
	if findFilter(r.Filter, "campaign") != nil {
		t.Fatalf("contains filter should not inject a parent filter")
	}
}

func TestRemovingParentIsFilterCascades(t *testing.T) {
	s := testSchema(t)
	r := Rules{Filter: []schema.FilterRule{
		{ID: "p1", Field: "campaign", Operator: schema.OpIs, Value: "summer"},
		{ID: "f1", Field: "adgroup", Operator: schema.OpIs, Value: "summer-a"},
		{ID: "f2", Field: "status", Operator: schema.OpIs, Value: "open"},
	}}
	r = ApplyRuleChange(r, RuleChange{Kind: RemoveFilter, RuleID: "p1"}, s)
	if findFilter(r.Filter, "adgroup") != nil {
		t.Fatalf("dependent adgroup filter should cascade away: %+v", r.Filter)
	}
	if findFilter(r.Filter, "status") == nil {
		t.Fatalf("unrelated status filter should survive: %+v", r.Filter)
	}
}

func TestRemovingNonParentFilterDoesNotCascade(t *testing.T) {
	s := testSchema(t)
	r := Rules{Filter: []schema.FilterRule{
		{ID: "f1", Field: "adgroup", Operator: schema.OpIs, Value: "summer-a"},
		{ID: "f2", Field: "status", Operator: schema.OpIs, Value: "open"},
	}}
	r = ApplyRuleChange(r, RuleChange{Kind: RemoveFilter, RuleID: "f2"}, s)
	if findFilter(r.Filter, "adgroup") == nil {
		t.Fatalf("removing a leaf filter must not cascade")
	}
}

func TestSortAndGroupUpsertRemoveClear(t *testing.T) {
	s := testSchema(t)
	r := ApplyRuleChange(Rules{}, RuleChange{Kind: SetSort, Rule: schema.SortRule{ID: "s1", Key: "amt", Direction: schema.Asc}}, s)
	r = ApplyRuleChange(r, RuleChange{Kind: SetSort, Rule: schema.SortRule{ID: "s1", Key: "amt", Direction: schema.Desc}}, s)
	if len(r.Sort) != 1 || r.Sort[0].Direction != schema.Desc {
		t.Fatalf("sort upsert failed: %+v", r.Sort)
	}
	r = ApplyRuleChange(r, RuleChange{Kind: SetGroup, Rule: schema.SortRule{ID: "g1", Key: "status", Direction: schema.Asc}}, s)
	r = ApplyRuleChange(r, RuleChange{Kind: RemoveSort, RuleID: "s1"}, s)
	if len(r.Sort) != 0 || len(r.Group) != 1 {
		t.Fatalf("remove sort touched the wrong list: %+v", r)
	}
	r = ApplyRuleChange(r, RuleChange{Kind: ClearGroups}, s)
	if len(r.Group) != 0 {
		t.Fatalf("clear groups failed")
	}
}

func TestApplyRuleChangeDoesNotMutateInput(t *testing.T) {
	s := testSchema(t)
	orig := Rules{Filter: []schema.FilterRule{{ID: "f1", Field: "status", Operator: schema.OpIs, Value: "open"}}}
	_ = ApplyRuleChange(orig, RuleChange{Kind: ClearFilters}, s)
	if len(orig.Filter) != 1 {
		t.Fatalf("input rules mutated")
	}
}
