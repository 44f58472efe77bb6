package engine

import (
	"fmt"
	"testing"

	"github.com/vantell/gridkit/internal/schema"
)

func makeRows(n int) []schema.Row {
	rows := make([]schema.Row, n)
	for i := range rows {
		rows[i] = schema.NewRow(fmt.Sprintf("r%03d", i), map[string]any{"amt": i})
	}
	return rows
}

func TestTotalPages(t *testing.T) {
	cases := []struct{ n, size, want int }{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 1},
	}
	for _, c := range cases {
		if got := TotalPages(c.n, c.size); got != c.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", c.n, c.size, got, c.want)
		}
	}
}

// Concatenating every page reproduces the full list exactly, for any size.
func TestPaginateCoversSetExactly(t *testing.T) {
	rows := makeRows(23)
	for _, size := range []int{1, 2, 5, 10, 23, 40} {
		var all []schema.Row
		for p := 1; p <= TotalPages(len(rows), size); p++ {
			all = append(all, Paginate(rows, p, size)...)
		}
		assertIDs(t, all, rowIDs(rows)...)
	}
}

func TestPaginatePastEndIsEmpty(t *testing.T) {
	rows := makeRows(5)
	if got := Paginate(rows, 3, 5); len(got) != 0 {
		t.Fatalf("page past end returned %d rows", len(got))
	}
}

func TestPaginateClampsPageBelowOne(t *testing.T) {
	rows := makeRows(5)
	got := Paginate(rows, 0, 2)
	assertIDs(t, got, "r000", "r001")
}

func TestPaginateZeroSizeReturnsAll(t *testing.T) {
	rows := makeRows(4)
	got := Paginate(rows, 1, 0)
	assertIDs(t, got, rowIDs(rows)...)
}
