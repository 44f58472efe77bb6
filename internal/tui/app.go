package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantell/gridkit/internal/config"
	"github.com/vantell/gridkit/internal/engine"
	"github.com/vantell/gridkit/internal/prefs"
	"github.com/vantell/gridkit/internal/schema"
)

// App renders one view of the record grid and routes edits through the
// engine and the preference reconciler.
type App struct {
	ctx    context.Context
	cfg    config.Config
	sch    *schema.Schema
	rows   []schema.Row
	rec    *prefs.Reconciler
	viewID string

	rules     engine.Rules
	colOrder  engine.ColumnOrder
	page      int
	collapsed map[string]bool

	panel       panelState
	colCursor   int
	rowCursor   int
	inputBuffer string
	status      string
	loaded      bool
}

// panelState is the single open toolbar panel. Opening one panel closes the
// others; closing everything is one assignment.
type panelState string

const (
	panelNone   panelState = ""
	panelFilter panelState = "filter"
	panelSort   panelState = "sort"
	panelGroup  panelState = "group"
)

// New builds the app around a schema, its record set, and a reconciler.
func New(ctx context.Context, cfg config.Config, sch *schema.Schema, rows []schema.Row, rec *prefs.Reconciler, viewID string) *App {
	return &App{
		ctx:       ctx,
		cfg:       cfg,
		sch:       sch,
		rows:      rows,
		rec:       rec,
		viewID:    viewID,
		colOrder:  engine.NewColumnOrder(sch.Keys()),
		page:      1,
		collapsed: map[string]bool{},
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadPrefs()
}

func (a *App) loadPrefs() tea.Cmd {
	return func() tea.Msg {
		a.rec.Load(a.ctx)
		return prefsLoadedMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case prefsLoadedMsg:
		a.loaded = true
		a.adoptSession()
		a.status = fmt.Sprintf("preferences: %s", a.rec.ResolvedFrom())
	case publishedMsg:
		a.status = "published to team"
	case resetDoneMsg:
		a.status = "user override cleared; press R to adopt the team view"
	case errMsg:
		a.status = "error: " + m.Error()
	case tea.KeyMsg:
		return a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.panel == panelFilter {
		return a.handleFilterPanelKey(m)
	}
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.panel = panelNone
	case "f":
		a.openPanel(panelFilter)
	case "s":
		a.openPanel(panelSort)
	case "g":
		a.openPanel(panelGroup)
	case "left", "h":
		if a.colCursor > 0 {
			a.colCursor--
		}
	case "right", "l":
		if a.colCursor < len(a.colOrder.Keys)-1 {
			a.colCursor++
		}
	case "up", "k":
		if a.rowCursor > 0 {
			a.rowCursor--
		}
	case "down", "j":
		if a.rowCursor < a.cursorMax() {
			a.rowCursor++
		}
	case "[":
		a.moveColumn(engine.DropBefore)
	case "]":
		a.moveColumn(engine.DropAfter)
	case "K":
		a.moveRow(engine.DropBefore)
	case "J":
		a.moveRow(engine.DropAfter)
	case "n":
		a.nextPage()
	case "p":
		if a.page > 1 {
			a.page--
		}
	case "z":
		a.toggleCollapse()
	case "enter":
		switch a.panel {
		case panelSort:
			a.cycleSort()
		case panelGroup:
			a.cycleGroup()
		}
	case "C":
		a.applyChange(engine.RuleChange{Kind: engine.ClearFilters})
		a.applyChange(engine.RuleChange{Kind: engine.ClearSorts})
		a.applyChange(engine.RuleChange{Kind: engine.ClearGroups})
		a.status = "rules cleared"
	case "e":
		return a, a.publishCmd()
	case "x":
		return a, a.resetCmd()
	case "R":
		a.adoptTeam()
	}
	return a, nil
}

func (a *App) handleFilterPanelKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.panel = panelNone
		a.inputBuffer = ""
	case "enter":
		a.addFilterFromInput()
	case "backspace":
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	case "ctrl+d":
		a.removeLastFilter()
	case "left":
		if a.colCursor > 0 {
			a.colCursor--
		}
	case "right":
		if a.colCursor < len(a.colOrder.Keys)-1 {
			a.colCursor++
		}
	default:
		if m.Type == tea.KeyRunes {
			a.inputBuffer += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) openPanel(p panelState) {
	if a.panel == p {
		a.panel = panelNone
		return
	}
	a.panel = p
	a.inputBuffer = ""
}

// cursorMax is the last selectable line: group headers when grouped, rows
// on the current page otherwise.
func (a *App) cursorMax() int {
	v := a.currentView()
	if v.Grouped() {
		return len(v.Groups) - 1
	}
	return len(v.Rows) - 1
}

func (a *App) selectedColumn() string {
	if len(a.colOrder.Keys) == 0 {
		return ""
	}
	if a.colCursor >= len(a.colOrder.Keys) {
		a.colCursor = len(a.colOrder.Keys) - 1
	}
	return a.colOrder.Keys[a.colCursor]
}

// applyChange routes every rule edit through the reducer and mirrors the new
// model into the reconciler session.
func (a *App) applyChange(ch engine.RuleChange) {
	a.rules = engine.ApplyRuleChange(a.rules, ch, a.sch)
	a.page = 1
	a.syncSession()
}

func (a *App) addFilterFromInput() {
	key := a.selectedColumn()
	if key == "" || a.inputBuffer == "" {
		return
	}
	if col, ok := a.sch.Column(key); ok && !col.Options.IsStatic() {
		a.status = "column has computed options; filtering on it is not supported"
		return
	}
	a.applyChange(engine.RuleChange{
		Kind:   engine.SetFilter,
		Filter: schema.NewFilterRule(key, schema.OpContains, a.inputBuffer, schema.ConjunctionAnd),
	})
	a.inputBuffer = ""
	a.status = "filter added"
}

func (a *App) removeLastFilter() {
	if len(a.rules.Filter) == 0 {
		return
	}
	last := a.rules.Filter[len(a.rules.Filter)-1]
	a.applyChange(engine.RuleChange{Kind: engine.RemoveFilter, RuleID: last.ID})
	a.status = "filter removed"
}

// cycleSort steps the selected column through asc, desc, off.
func (a *App) cycleSort() {
	key := a.selectedColumn()
	if key == "" {
		return
	}
	for _, r := range a.rules.Sort {
		if r.Key != key {
			continue
		}
		if r.Direction == schema.Asc {
			r.Direction = schema.Desc
			a.applyChange(engine.RuleChange{Kind: engine.SetSort, Rule: r})
		} else {
			a.applyChange(engine.RuleChange{Kind: engine.RemoveSort, RuleID: r.ID})
		}
		return
	}
	a.applyChange(engine.RuleChange{Kind: engine.SetSort, Rule: schema.NewSortRule(key, schema.Asc)})
}

func (a *App) cycleGroup() {
	key := a.selectedColumn()
	if key == "" {
		return
	}
	for _, r := range a.rules.Group {
		if r.Key != key {
			continue
		}
		if r.Direction == schema.Asc {
			r.Direction = schema.Desc
			a.applyChange(engine.RuleChange{Kind: engine.SetGroup, Rule: r})
		} else {
			a.applyChange(engine.RuleChange{Kind: engine.RemoveGroup, RuleID: r.ID})
		}
		return
	}
	a.applyChange(engine.RuleChange{Kind: engine.SetGroup, Rule: schema.NewSortRule(key, schema.Asc)})
}

func (a *App) moveColumn(pos engine.DropPosition) {
	key := a.selectedColumn()
	if key == "" {
		return
	}
	var target string
	if pos == engine.DropBefore {
		if a.colCursor == 0 {
			return
		}
		target = a.colOrder.Keys[a.colCursor-1]
	} else {
		if a.colCursor >= len(a.colOrder.Keys)-1 {
			return
		}
		target = a.colOrder.Keys[a.colCursor+1]
	}
	a.colOrder = a.colOrder.Reorder(key, target, pos)
	for i, k := range a.colOrder.Keys {
		if k == key {
			a.colCursor = i
		}
	}
	a.syncSession()
}

// moveRow drags the row under the cursor past its neighbour. Manual row
// order only exists while no sort or group rule is active.
func (a *App) moveRow(pos engine.DropPosition) {
	if len(a.rules.Sort) > 0 || len(a.rules.Group) > 0 {
		a.status = "clear sort/group rules to reorder rows manually"
		return
	}
	displayed := a.currentView().Rows
	if a.rowCursor >= len(displayed) {
		return
	}
	var targetIdx int
	if pos == engine.DropBefore {
		targetIdx = a.rowCursor - 1
	} else {
		targetIdx = a.rowCursor + 1
	}
	if targetIdx < 0 || targetIdx >= len(displayed) {
		return
	}
	order := engine.ReorderRow(displayed, displayed[a.rowCursor].ID, displayed[targetIdx].ID, pos)
	a.applyChange(engine.RuleChange{Kind: engine.SetRowOrder, RowOrder: engine.NormalizeRowOrder(order, a.rows)})
	a.rowCursor = targetIdx
}

func (a *App) nextPage() {
	v := a.currentView()
	if a.page < v.TotalPages {
		a.page++
	}
}

func (a *App) toggleCollapse() {
	v := a.currentView()
	if !v.Grouped() || a.rowCursor >= len(v.Groups) {
		return
	}
	id := v.Groups[a.rowCursor].ID
	a.collapsed[id] = !a.collapsed[id]
}

func (a *App) publishCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.rec.SaveForEveryone(a.ctx); err != nil {
			return errMsg{err}
		}
		return publishedMsg{}
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.rec.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return resetDoneMsg{}
	}
}

// adoptTeam resets the live session to the team baseline, the explicit
// second half of a reset.
func (a *App) adoptTeam() {
	team := a.rec.Team()
	if team == nil {
		a.status = "no team view exists"
		return
	}
	a.rec.SetSession(*team)
	a.adoptSession()
	a.status = "adopted team view"
}

// adoptSession pulls the reconciler's session into the local rule model.
func (a *App) adoptSession() {
	p := a.rec.Session()
	a.rules = engine.Rules{
		Filter:   p.FilterConfig,
		Sort:     p.SortConfig,
		Group:    p.GroupConfig,
		RowOrder: p.RowOrder,
	}
	order := engine.NewColumnOrder(a.sch.Keys())
	if len(p.ColumnOrder) > 0 {
		order.Keys = p.ColumnOrder
	}
	if p.ActionsColumnIndex != nil {
		order.ActionsIndex = *p.ActionsColumnIndex
	}
	a.colOrder = order.Normalize(a.sch.Keys())
	a.page = 1
}

// syncSession mirrors the local rule model into the reconciler session,
// scheduling the debounced user-scope persist.
func (a *App) syncSession() {
	rules, order := a.rules, a.colOrder
	a.rec.Apply(func(p *prefs.Preferences) {
		p.FilterConfig = append([]schema.FilterRule(nil), rules.Filter...)
		p.SortConfig = append([]schema.SortRule(nil), rules.Sort...)
		p.GroupConfig = append([]schema.GroupRule(nil), rules.Group...)
		p.RowOrder = append([]string(nil), rules.RowOrder...)
		p.ColumnOrder = append([]string(nil), order.Keys...)
		idx := order.ActionsIndex
		p.ActionsColumnIndex = &idx
	})
}

func (a *App) currentView() engine.View {
	return engine.ComputeView(a.rows, a.sch, a.rules, &engine.Page{Index: a.page, Size: a.cfg.View.PageSize})
}

func (a *App) View() string {
	if !a.loaded {
		return titleStyle.Render("GridKit") + "\nloading preferences..."
	}
	body := a.renderGrid()
	if a.panel != panelNone {
		body += "\n\n" + a.renderPanel()
	}
	if a.status != "" {
		body += "\n" + a.status
	}
	return body
}

func (a *App) renderGrid() string {
	v := a.currentView()
	out := titleStyle.Render("GridKit - "+a.viewID) + "  " + a.viewIndicator() + "\n"
	out += a.renderHeader() + "\n"
	if v.Grouped() {
		out += a.renderGroups(v.Groups)
	} else {
		for i, row := range v.Rows {
			out += a.renderRow(row, i == a.rowCursor, 0)
		}
		out += fmt.Sprintf("page %d of %d  (%d records)\n", a.page, v.TotalPages, v.TotalRows)
	}
	out += "[f] Filter  [s] Sort  [g] Group  [[/]] Move column  [J/K] Move row  [z] Collapse  [n/p] Page  [e] Publish  [x] Reset  [R] Adopt team  [C] Clear  [q] Quit"
	return out
}

// viewIndicator tells the user whether their session still matches the
// published team view.
func (a *App) viewIndicator() string {
	if a.rec.MatchesTeam() {
		return "Team View"
	}
	return "Your View"
}

func (a *App) renderHeader() string {
	var cells []string
	for i, key := range a.colOrder.Keys {
		label := key
		if col, ok := a.sch.Column(key); ok && col.Header != "" {
			label = col.Header
		}
		label += a.sortMarker(key)
		if i == a.colCursor {
			label = "[" + label + "]"
		}
		cells = append(cells, fmt.Sprintf("%-16s", label))
	}
	rendered := a.colOrder.Render()
	var out []string
	ci := 0
	for _, key := range rendered {
		if key == engine.ActionsKey {
			out = append(out, fmt.Sprintf("%-16s", "⋯"))
			continue
		}
		out = append(out, cells[ci])
		ci++
	}
	return strings.Join(out, "")
}

func (a *App) sortMarker(key string) string {
	for _, r := range a.rules.Group {
		if r.Key == key {
			return " ◉"
		}
	}
	for _, r := range a.rules.Sort {
		if r.Key == key {
			if r.Direction == schema.Desc {
				return " ↓"
			}
			return " ↑"
		}
	}
	return ""
}

func (a *App) renderRow(row schema.Row, selected bool, indent int) string {
	marker := " "
	if selected {
		marker = "▶"
	}
	out := marker + strings.Repeat("  ", indent)
	for _, key := range a.colOrder.Render() {
		if key == engine.ActionsKey {
			out += fmt.Sprintf("%-16s", "· · ·")
			continue
		}
		text := schema.Stringify(a.sch.CellValue(row, key))
		if col, ok := a.sch.Column(key); ok {
			text = col.OptionLabel(text)
		}
		if len(text) > 14 {
			text = text[:13] + "…"
		}
		out += fmt.Sprintf("%-16s", text)
	}
	return out + "\n"
}

func (a *App) renderGroups(nodes []engine.GroupNode) string {
	var b strings.Builder
	for i, n := range nodes {
		marker := " "
		if n.Level == 0 && i == a.rowCursor {
			marker = "▶"
		}
		arrow := "▾"
		if a.collapsed[n.ID] {
			arrow = "▸"
		}
		b.WriteString(fmt.Sprintf("%s%s%s %s (%d)\n", marker, strings.Repeat("  ", n.Level+1), arrow, n.Value, n.Count))
		if a.collapsed[n.ID] {
			continue
		}
		if len(n.Children) > 0 {
			b.WriteString(a.renderGroups(n.Children))
			continue
		}
		for _, row := range n.Rows {
			b.WriteString(a.renderRow(row, false, n.Level+2))
		}
	}
	return b.String()
}

func (a *App) renderPanel() string {
	switch a.panel {
	case panelFilter:
		out := titleStyle.Render("Filters") + "\n"
		for _, r := range a.rules.Filter {
			out += fmt.Sprintf("  %s %s %s %q\n", r.Conjunction, r.Field, r.Operator, r.Value)
			if _, ok := a.sch.Column(r.Field); !ok {
				// stale column reference, usually from an older saved view
				if near := a.sch.NearestKey(r.Field); near != "" && near != r.Field {
					out += fmt.Sprintf("    unknown column %q, did you mean %q?\n", r.Field, near)
				} else {
					out += fmt.Sprintf("    unknown column %q\n", r.Field)
				}
			}
		}
		out += fmt.Sprintf("contains on %s: %s\n[enter] Add  [ctrl+d] Remove last  [esc] Close", a.selectedColumn(), a.inputBuffer)
		return out
	case panelSort:
		out := titleStyle.Render("Sorts") + "\n"
		for _, r := range a.rules.Sort {
			out += fmt.Sprintf("  %s %s\n", r.Key, r.Direction)
		}
		out += "[enter] Cycle asc/desc/off on selected column  [esc] Close"
		return out
	case panelGroup:
		out := titleStyle.Render("Groups") + "\n"
		for _, r := range a.rules.Group {
			out += fmt.Sprintf("  %s %s\n", r.Key, r.Direction)
		}
		out += "[enter] Cycle asc/desc/off on selected column  [esc] Close"
		return out
	}
	return ""
}

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// messages
type prefsLoadedMsg struct{}

type publishedMsg struct{}

type resetDoneMsg struct{}

type errMsg struct{ error }
