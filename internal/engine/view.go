package engine

import "github.com/vantell/gridkit/internal/schema"

// Rules is the full rule model driving one computed view.
type Rules struct {
	Filter   []schema.FilterRule
	Sort     []schema.SortRule
	Group    []schema.GroupRule
	RowOrder []string
}

// Page selects one slice of the ungrouped result. Index is 1-based.
type Page struct {
	Index int
	Size  int
}

// View is the renderable projection: either a flat (possibly paginated) row
// list or a group tree, never both.
type View struct {
	Rows       []schema.Row
	Groups     []GroupNode
	TotalRows  int
	TotalPages int
}

// Grouped reports whether the view is a group tree.
func (v View) Grouped() bool { return v.Groups != nil }

// ComputeView runs the full pipeline: filter, sort (group keys first, manual
// order as fallback), then either the group tree or pagination. Grouped views
// always show the whole tree; pagination applies only when no group rule is
// active. The function is pure: identical inputs yield structurally identical
// output.
func ComputeView(rows []schema.Row, s *schema.Schema, rules Rules, page *Page) View {
	filtered := Filter(rows, rules.Filter, s)
	sorted := Sort(filtered, rules.Group, rules.Sort, s, rules.RowOrder)

	if len(rules.Group) > 0 {
		return View{
			Groups:     BuildGroups(sorted, rules.Group, s),
			TotalRows:  len(sorted),
			TotalPages: 1,
		}
	}

	v := View{TotalRows: len(sorted), TotalPages: 1}
	if page == nil {
		v.Rows = sorted
		return v
	}
	v.TotalPages = TotalPages(len(sorted), page.Size)
	v.Rows = Paginate(sorted, page.Index, page.Size)
	return v
}
