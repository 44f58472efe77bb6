package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vantell/gridkit/internal/schema"
)

// Sort orders rows by the effective key list: group rules first, then sort
// rules. With no keys at all the fallback manual row order applies; ids not
// present in the fallback keep their input order at the end. The sort is
// stable either way.
func Sort(rows []schema.Row, groupRules []schema.GroupRule, sortRules []schema.SortRule, s *schema.Schema, fallbackRowOrder []string) []schema.Row {
	out := make([]schema.Row, len(rows))
	copy(out, rows)

	keys := make([]schema.SortRule, 0, len(groupRules)+len(sortRules))
	keys = append(keys, groupRules...)
	keys = append(keys, sortRules...)

	if len(keys) == 0 {
		applyFallbackOrder(out, fallbackRowOrder)
		return out
	}

	// Collator is not safe for concurrent use, so build one per call.
	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return compareRows(out[i], out[j], keys, s, coll) < 0
	})
	return out
}

func applyFallbackOrder(rows []schema.Row, order []string) {
	if len(order) == 0 {
		return
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		pi, iok := pos[rows[i].ID]
		pj, jok := pos[rows[j].ID]
		switch {
		case iok && jok:
			return pi < pj
		case iok:
			return true
		default:
			return false
		}
	})
}

func compareRows(a, b schema.Row, keys []schema.SortRule, s *schema.Schema, coll *collate.Collator) int {
	for _, rule := range keys {
		cmp := compareValues(s.CellValue(a, rule.Key), s.CellValue(b, rule.Key), coll)
		if cmp == 0 {
			continue
		}
		if rule.Direction == schema.Desc {
			// Empty values stay last regardless of direction, so the flip
			// happens inside compareValues via the sentinel channel below.
			if cmp == emptyAfter || cmp == -emptyAfter {
				return cmp / emptyAfter
			}
			return -cmp
		}
		if cmp == emptyAfter || cmp == -emptyAfter {
			return cmp / emptyAfter
		}
		return cmp
	}
	return 0
}

// emptyAfter marks a comparison decided purely by emptiness; such results are
// never negated by descending direction.
const emptyAfter = 2

func compareValues(av, bv any, coll *collate.Collator) int {
	aEmpty := schema.IsEmptyValue(av)
	bEmpty := schema.IsEmptyValue(bv)
	switch {
	case aEmpty && bEmpty:
		return 0
	case aEmpty:
		return emptyAfter
	case bEmpty:
		return -emptyAfter
	}

	as := schema.Stringify(av)
	bs := schema.Stringify(bv)
	af, aerr := strconv.ParseFloat(strings.TrimSpace(as), 64)
	bf, berr := strconv.ParseFloat(strings.TrimSpace(bs), 64)
	if aerr == nil && berr == nil && !math.IsInf(af, 0) && !math.IsInf(bf, 0) {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return coll.CompareString(as, bs)
}
