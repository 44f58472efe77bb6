package prefs

import (
	"encoding/json"
	"reflect"

	"github.com/vantell/gridkit/internal/schema"
)

// CurrentVersion is written into every persisted preference object. The
// original wire format had no version field; carrying one costs nothing and
// leaves room for future migrations.
const CurrentVersion = 1

// Scope is the persistence tier a preference set belongs to.
type Scope string

const (
	ScopeUser Scope = "user"
	ScopeTeam Scope = "team"
)

// ActionsWidthKey is the column-widths entry for the actions pseudo-column.
// It is session-internal and excluded from team comparisons.
const ActionsWidthKey = "_actions"

// Preferences is the persisted view configuration for one (scope, view).
type Preferences struct {
	Version            int                 `json:"version"`
	SortConfig         []schema.SortRule   `json:"sort_config,omitempty"`
	FilterConfig       []schema.FilterRule `json:"filter_config,omitempty"`
	GroupConfig        []schema.GroupRule  `json:"group_config,omitempty"`
	WrapConfig         map[string]bool     `json:"wrap_config,omitempty"`
	ThumbnailSize      string              `json:"thumbnail_size_config,omitempty"`
	RowOrder           []string            `json:"row_order,omitempty"`
	ColumnWidths       map[string]int      `json:"column_widths,omitempty"`
	ColumnOrder        []string            `json:"column_order,omitempty"`
	ActionsColumnIndex *int                `json:"actions_column_index,omitempty"`
}

// Clone deep-copies the preferences.
func (p Preferences) Clone() Preferences {
	out := p
	out.SortConfig = append([]schema.SortRule(nil), p.SortConfig...)
	out.FilterConfig = append([]schema.FilterRule(nil), p.FilterConfig...)
	out.GroupConfig = append([]schema.GroupRule(nil), p.GroupConfig...)
	out.RowOrder = append([]string(nil), p.RowOrder...)
	if p.WrapConfig != nil {
		out.WrapConfig = make(map[string]bool, len(p.WrapConfig))
		for k, v := range p.WrapConfig {
			out.WrapConfig[k] = v
		}
	}
	if p.ColumnWidths != nil {
		out.ColumnWidths = make(map[string]int, len(p.ColumnWidths))
		for k, v := range p.ColumnWidths {
			out.ColumnWidths[k] = v
		}
	}
	if p.ActionsColumnIndex != nil {
		idx := *p.ActionsColumnIndex
		out.ActionsColumnIndex = &idx
	}
	return out
}

// Matches reports whether two preference sets are equivalent for the
// "matches team view" indicator: both are normalized through JSON (which
// canonicalizes key order and drops empty collections) and the actions
// pseudo-column width is ignored, since it is never shared.
func Matches(a, b Preferences) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(p Preferences) map[string]any {
	c := p.Clone()
	c.Version = 0 // version is metadata, not configuration
	if c.ColumnWidths != nil {
		delete(c.ColumnWidths, ActionsWidthKey)
		if len(c.ColumnWidths) == 0 {
			c.ColumnWidths = nil
		}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	delete(out, "version")
	return out
}
