package schema

import "github.com/google/uuid"

// Operator is a filter comparison.
type Operator string

const (
	OpContains       Operator = "contains"
	OpDoesNotContain Operator = "does_not_contain"
	OpIs             Operator = "is"
	OpIsNot          Operator = "is_not"
	OpIsEmpty        Operator = "is_empty"
	OpIsNotEmpty     Operator = "is_not_empty"
)

// Conjunction joins a filter rule with the accumulated result of the rules
// before it.
type Conjunction string

const (
	ConjunctionAnd Conjunction = "and"
	ConjunctionOr  Conjunction = "or"
)

// Direction orders a sort or group level.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// FilterRule matches rows against one column. Rules are evaluated
// left-to-right; the conjunction belongs to the rule it is attached to.
type FilterRule struct {
	ID          string      `json:"id"`
	Field       string      `json:"field"`
	Operator    Operator    `json:"operator"`
	Value       string      `json:"value"`
	Conjunction Conjunction `json:"conjunction"`
}

// SortRule orders rows by one column. Group rules have the same shape: a
// grouping level is also a sort key, so the alias keeps concatenation of
// group and sort rules into one effective key list trivial.
type SortRule struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// GroupRule nests rows under the distinct values of one column.
type GroupRule = SortRule

// NewFilterRule mints a filter rule with a fresh id.
func NewFilterRule(field string, op Operator, value string, conj Conjunction) FilterRule {
	return FilterRule{ID: uuid.NewString(), Field: field, Operator: op, Value: value, Conjunction: conj}
}

// NewSortRule mints a sort (or group) rule with a fresh id.
func NewSortRule(key string, dir Direction) SortRule {
	return SortRule{ID: uuid.NewString(), Key: key, Direction: dir}
}
