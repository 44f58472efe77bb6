package engine

import (
	"github.com/vantell/gridkit/internal/schema"
)

// EmptyGroupLabel is the display label for rows whose group value is empty.
const EmptyGroupLabel = "(empty)"

// GroupNode is one node of the grouping tree. Intermediate levels hold
// Children; the deepest level holds Rows. IDs are derived from the ancestor
// path so they are globally unique and stable across recomputes, which lets
// callers key collapse state on them.
type GroupNode struct {
	ID         string
	Value      string
	Level      int
	Count      int
	ColorClass string
	Children   []GroupNode
	Rows       []schema.Row
}

// BuildGroups partitions already-sorted rows into a nested tree, one level
// per group rule. Partitions preserve first-seen order, so the incoming sort
// order decides how groups are ordered within each level.
func BuildGroups(sortedRows []schema.Row, groupRules []schema.GroupRule, s *schema.Schema) []GroupNode {
	if len(groupRules) == 0 {
		return nil
	}
	return buildLevel(sortedRows, groupRules, s, 0, "")
}

func buildLevel(rows []schema.Row, groupRules []schema.GroupRule, s *schema.Schema, level int, parentID string) []GroupNode {
	rule := groupRules[level]
	col, hasCol := s.Column(rule.Key)

	var order []string
	buckets := map[string][]schema.Row{}
	for _, r := range rows {
		raw := schema.Stringify(s.CellValue(r, rule.Key))
		if _, seen := buckets[raw]; !seen {
			order = append(order, raw)
		}
		buckets[raw] = append(buckets[raw], r)
	}

	nodes := make([]GroupNode, 0, len(order))
	for _, raw := range order {
		subset := buckets[raw]
		label := EmptyGroupLabel
		if raw != "" {
			label = raw
			if hasCol {
				label = col.OptionLabel(raw)
			}
		}
		node := GroupNode{
			ID:    parentID + "/" + rule.Key + ":" + raw,
			Value: label,
			Level: level,
			Count: len(subset),
		}
		if hasCol && col.ColorMap != nil {
			node.ColorClass = col.ColorMap[raw]
		}
		if level == len(groupRules)-1 {
			node.Rows = subset
		} else {
			node.Children = buildLevel(subset, groupRules, s, level+1, node.ID)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// FlattenGroups concatenates all leaf rows in traversal order. With the same
// effective rule list this reproduces the sort-only row sequence exactly.
func FlattenGroups(nodes []GroupNode) []schema.Row {
	var out []schema.Row
	for _, n := range nodes {
		if n.Rows != nil {
			out = append(out, n.Rows...)
			continue
		}
		out = append(out, FlattenGroups(n.Children)...)
	}
	return out
}
