package engine

import "github.com/vantell/gridkit/internal/schema"

// TotalPages reports how many pages of the given size cover n rows. There is
// always at least one page, even for an empty set.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate slices one page (1-based) out of the sorted row list. Pages past
// the end come back empty; the caller is expected to reset to page 1 when the
// data shrinks underneath it.
func Paginate(rows []schema.Row, page, pageSize int) []schema.Row {
	if pageSize <= 0 {
		out := make([]schema.Row, len(rows))
		copy(out, rows)
		return out
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]schema.Row, end-start)
	copy(out, rows[start:end])
	return out
}
