package schema

import (
	"fmt"
)

// Kind classifies a column for rendering and editing.
type Kind string

const (
	KindText      Kind = "text"
	KindLongText  Kind = "longtext"
	KindSelect    Kind = "select"
	KindDate      Kind = "date"
	KindURL       Kind = "url"
	KindPriority  Kind = "priority"
	KindID        Kind = "id"
	KindPeople    Kind = "people"
	KindThumbnail Kind = "thumbnail"
	KindFilesize  Kind = "filesize"
	KindAdCopy    Kind = "adcopy"
	KindMedia     Kind = "media"
	KindCustom    Kind = "custom"
)

// Option is one selectable value of a select-like column.
type Option struct {
	Value string
	Label string
}

// OptionsSource supplies a column's options. Static options can be enumerated
// up front (filter panels need that); computed options are resolved per row
// and are rejected wherever static enumeration is required.
type OptionsSource struct {
	Static   []Option
	Computed func(rowID string) []Option
}

// IsStatic reports whether the source can be enumerated without a row.
func (o OptionsSource) IsStatic() bool { return o.Computed == nil }

// DependsOn links a column to a parent column: setting an exact-match filter
// on the child implies one on the parent.
type DependsOn struct {
	ParentKey     string
	ResolveParent func(childValue string) string
}

// Column describes one column of the view.
type Column struct {
	Key      string
	Header   string
	Kind     Kind
	Editable bool
	Viewable bool
	Options  OptionsSource
	// ColorMap tags cell values with a style class, used for group headers.
	ColorMap  map[string]string
	DependsOn *DependsOn
	// GetValue overrides the default Fields[Key] lookup.
	GetValue func(Row) any
}

// OptionLabel resolves a raw value to its display label via static options.
// Falls back to the raw value when no option matches or options are computed.
func (c Column) OptionLabel(raw string) string {
	for _, o := range c.Options.Static {
		if o.Value == raw {
			if o.Label != "" {
				return o.Label
			}
			return o.Value
		}
	}
	return raw
}

// Schema is a validated, ordered column set.
type Schema struct {
	columns []Column
	byKey   map[string]Column
}

// New validates the column set and builds a Schema. It rejects duplicate
// keys, dangling DependsOn references, and cyclic DependsOn chains.
func New(columns []Column) (*Schema, error) {
	byKey := make(map[string]Column, len(columns))
	for _, c := range columns {
		if c.Key == "" {
			return nil, fmt.Errorf("column %q: empty key", c.Header)
		}
		if _, dup := byKey[c.Key]; dup {
			return nil, fmt.Errorf("duplicate column key %q", c.Key)
		}
		byKey[c.Key] = c
	}
	for _, c := range columns {
		if c.DependsOn == nil {
			continue
		}
		if _, ok := byKey[c.DependsOn.ParentKey]; !ok {
			return nil, fmt.Errorf("column %q depends on unknown column %q", c.Key, c.DependsOn.ParentKey)
		}
		// walk the chain; a revisit means a cycle
		seen := map[string]bool{c.Key: true}
		cur := c
		for cur.DependsOn != nil {
			parent := cur.DependsOn.ParentKey
			if seen[parent] {
				return nil, fmt.Errorf("column %q: dependency cycle through %q", c.Key, parent)
			}
			seen[parent] = true
			cur = byKey[parent]
		}
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Schema{columns: cols, byKey: byKey}, nil
}

// MustNew is New for statically known column sets.
func MustNew(columns []Column) *Schema {
	s, err := New(columns)
	if err != nil {
		panic(err)
	}
	return s
}

// Columns returns the columns in declaration order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Keys returns the column keys in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		keys = append(keys, c.Key)
	}
	return keys
}

// Column looks up a column by key.
func (s *Schema) Column(key string) (Column, bool) {
	c, ok := s.byKey[key]
	return c, ok
}

// CellValue resolves a row's value for a column key. Unknown keys resolve to
// nil rather than failing; a rule pointing at a removed column simply never
// matches non-empty operators.
func (s *Schema) CellValue(row Row, key string) any {
	if c, ok := s.byKey[key]; ok && c.GetValue != nil {
		return c.GetValue(row)
	}
	return row.Fields[key]
}

// Dependents returns keys of columns whose DependsOn chain includes key,
// directly or transitively.
func (s *Schema) Dependents(key string) []string {
	var out []string
	for _, c := range s.columns {
		cur := c
		for cur.DependsOn != nil {
			if cur.DependsOn.ParentKey == key {
				out = append(out, c.Key)
				break
			}
			cur = s.byKey[cur.DependsOn.ParentKey]
		}
	}
	return out
}
