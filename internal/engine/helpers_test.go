package engine

import (
	"testing"

	"github.com/vantell/gridkit/internal/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New([]schema.Column{
		{Key: "status", Header: "Status", Kind: schema.KindSelect,
			Options: schema.OptionsSource{Static: []schema.Option{
				{Value: "open", Label: "Open"},
				{Value: "closed", Label: "Closed"},
			}},
			ColorMap: map[string]string{"open": "green", "closed": "gray"},
		},
		{Key: "amt", Header: "Amount", Kind: schema.KindText},
		{Key: "owner", Header: "Owner", Kind: schema.KindPeople},
		{Key: "campaign", Header: "Campaign", Kind: schema.KindSelect},
		{Key: "adgroup", Header: "Ad Group", Kind: schema.KindSelect,
			DependsOn: &schema.DependsOn{
				ParentKey: "campaign",
				ResolveParent: func(child string) string {
					if child == "summer-a" || child == "summer-b" {
						return "summer"
					}
					return "winter"
				},
			}},
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

// sampleRows is the three-row data set used by the acceptance scenarios.
func sampleRows() []schema.Row {
	return []schema.Row{
		schema.NewRow("1", map[string]any{"status": "open", "amt": 30}),
		schema.NewRow("2", map[string]any{"status": "open", "amt": 10}),
		schema.NewRow("3", map[string]any{"status": "closed", "amt": 20}),
	}
}

func rowIDs(rows []schema.Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func assertIDs(t *testing.T, rows []schema.Row, want ...string) {
	t.Helper()
	got := rowIDs(rows)
	if len(got) != len(want) {
		t.Fatalf("row ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row ids = %v, want %v", got, want)
		}
	}
}

func assertStrings(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence = %v, want %v", got, want)
		}
	}
}
