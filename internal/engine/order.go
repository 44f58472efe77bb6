package engine

import "github.com/vantell/gridkit/internal/schema"

// ActionsKey names the synthetic actions pseudo-column. It is positioned by
// ColumnOrder.ActionsIndex rather than by membership in the key sequence.
const ActionsKey = "_actions"

// DropPosition says which side of the target a drag landed on.
type DropPosition string

const (
	DropBefore DropPosition = "before"
	DropAfter  DropPosition = "after"
)

// ColumnOrder is the manual column arrangement: the data-column key sequence
// plus the floating index of the actions pseudo-column (-1 = at the end).
type ColumnOrder struct {
	Keys         []string
	ActionsIndex int
}

// NewColumnOrder starts from the schema's natural order with actions at the
// end.
func NewColumnOrder(keys []string) ColumnOrder {
	out := make([]string, len(keys))
	copy(out, keys)
	return ColumnOrder{Keys: out, ActionsIndex: -1}
}

func (o ColumnOrder) clone() ColumnOrder {
	keys := make([]string, len(o.Keys))
	copy(keys, o.Keys)
	return ColumnOrder{Keys: keys, ActionsIndex: o.ActionsIndex}
}

func (o ColumnOrder) indexOf(key string) int {
	for i, k := range o.Keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Reorder applies one drag of dragged onto target. Drags involving the
// actions pseudo-column move only ActionsIndex; data-to-data drags splice the
// key sequence and shift ActionsIndex when the move crosses its boundary so
// the pseudo-column stays anchored relative to its neighbours. Identical
// dragged/target is a no-op, and no key is ever dropped or duplicated.
func (o ColumnOrder) Reorder(dragged, target string, pos DropPosition) ColumnOrder {
	if dragged == target {
		return o.clone()
	}

	if dragged == ActionsKey {
		ti := o.indexOf(target)
		if ti < 0 {
			return o.clone()
		}
		idx := ti
		if pos == DropAfter {
			idx++
		}
		out := o.clone()
		out.ActionsIndex = clamp(idx, 0, len(out.Keys))
		return out
	}

	if target == ActionsKey {
		// Dropping a data column on the pseudo-column reads as moving the
		// pseudo-column to the other side of it; only the index moves.
		di := o.indexOf(dragged)
		if di < 0 {
			return o.clone()
		}
		out := o.clone()
		if pos == DropBefore {
			out.ActionsIndex = clamp(di+1, 0, len(out.Keys))
		} else {
			out.ActionsIndex = clamp(di, 0, len(out.Keys))
		}
		return out
	}

	di := o.indexOf(dragged)
	ti := o.indexOf(target)
	if di < 0 || ti < 0 {
		return o.clone()
	}

	out := o.clone()
	out.Keys = append(out.Keys[:di], out.Keys[di+1:]...)
	ins := ti
	if di < ti {
		ins--
	}
	if pos == DropAfter {
		ins++
	}
	ins = clamp(ins, 0, len(out.Keys))
	out.Keys = append(out.Keys[:ins], append([]string{dragged}, out.Keys[ins:]...)...)

	if a := out.ActionsIndex; a >= 0 {
		if di < a && ins >= a {
			out.ActionsIndex = a - 1
		} else if di >= a && ins < a {
			out.ActionsIndex = a + 1
		}
	}
	return out
}

// Normalize reconciles the order with the live key set: stale keys are
// dropped, unreferenced live keys are appended in their natural order, and
// ActionsIndex is clamped back into range.
func (o ColumnOrder) Normalize(liveKeys []string) ColumnOrder {
	live := make(map[string]bool, len(liveKeys))
	for _, k := range liveKeys {
		live[k] = true
	}
	kept := make([]string, 0, len(liveKeys))
	seen := make(map[string]bool, len(liveKeys))
	for _, k := range o.Keys {
		if live[k] && !seen[k] {
			kept = append(kept, k)
			seen[k] = true
		}
	}
	for _, k := range liveKeys {
		if !seen[k] {
			kept = append(kept, k)
		}
	}
	idx := o.ActionsIndex
	if idx > len(kept) {
		idx = len(kept)
	}
	if idx < -1 {
		idx = -1
	}
	return ColumnOrder{Keys: kept, ActionsIndex: idx}
}

// Render returns the full display sequence with the actions pseudo-column
// spliced in at its floating index (-1 = last).
func (o ColumnOrder) Render() []string {
	out := make([]string, 0, len(o.Keys)+1)
	idx := o.ActionsIndex
	if idx < 0 || idx > len(o.Keys) {
		idx = len(o.Keys)
	}
	out = append(out, o.Keys[:idx]...)
	out = append(out, ActionsKey)
	out = append(out, o.Keys[idx:]...)
	return out
}

// ReorderRow applies one row drag within the currently displayed (already
// sorted) list and returns the resulting id sequence to persist as the
// fallback row order. Meaningful only when no sort or group rule is active.
func ReorderRow(displayed []schema.Row, draggedID, targetID string, pos DropPosition) []string {
	ids := make([]string, len(displayed))
	di, ti := -1, -1
	for i, r := range displayed {
		ids[i] = r.ID
		if r.ID == draggedID {
			di = i
		}
		if r.ID == targetID {
			ti = i
		}
	}
	if di < 0 || ti < 0 || draggedID == targetID {
		return ids
	}

	ids = append(ids[:di], ids[di+1:]...)
	ins := ti
	if di < ti {
		ins--
	}
	if pos == DropAfter {
		ins++
	}
	ins = clamp(ins, 0, len(ids))
	return append(ids[:ins], append([]string{draggedID}, ids[ins:]...)...)
}

// NormalizeRowOrder drops ids no longer present and appends unreferenced live
// rows in their natural order.
func NormalizeRowOrder(order []string, rows []schema.Row) []string {
	live := make(map[string]bool, len(rows))
	for _, r := range rows {
		live[r.ID] = true
	}
	out := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, id := range order {
		if live[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, r := range rows {
		if !seen[r.ID] {
			out = append(out, r.ID)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
