package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantell/gridkit/internal/config"
	"github.com/vantell/gridkit/internal/prefs"
	"github.com/vantell/gridkit/internal/schema"
	"github.com/vantell/gridkit/internal/store"
	"github.com/vantell/gridkit/internal/tui"
)

const viewID = "campaign-grid"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer cleanup()

	sch := campaignSchema()
	rows := sampleRows()

	rec := prefs.NewReconciler(st, viewID, cfg.View.UserID, defaultPrefs(sch), prefs.Options{
		Debounce:    cfg.Prefs.Debounce(),
		LoadTimeout: cfg.Prefs.LoadTimeout(),
	})
	defer rec.Close()

	p := tea.NewProgram(tui.New(ctx, cfg, sch, rows, rec, viewID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}

	if err := rec.Flush(ctx); err != nil {
		log.Printf("flush: %v", err)
	}
}

func openStore(cfg config.Config) (prefs.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store.Backend)) {
	case "diskv":
		if err := os.MkdirAll(cfg.Store.DiskvPath, 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir diskv dir: %w", err)
		}
		return store.NewDiskvStore(cfg.Store.DiskvPath), func() {}, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		db, err := store.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		if err := store.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return store.NewSQLiteStore(db), func() { db.Close() }, nil
	}
}

// defaultPrefs is the baseline every new user and view starts from.
func defaultPrefs(sch *schema.Schema) prefs.Preferences {
	idx := -1
	return prefs.Preferences{
		ColumnOrder:        sch.Keys(),
		ActionsColumnIndex: &idx,
	}
}

func campaignSchema() *schema.Schema {
	resolveCampaign := func(adgroup string) string {
		switch {
		case strings.HasPrefix(adgroup, "summer-"):
			return "summer-launch"
		case strings.HasPrefix(adgroup, "winter-"):
			return "winter-retarget"
		default:
			return ""
		}
	}
	return schema.MustNew([]schema.Column{
		{Key: "name", Header: "Ad", Kind: schema.KindText, Editable: true, Viewable: true},
		{Key: "status", Header: "Status", Kind: schema.KindSelect, Editable: true, Viewable: true,
			Options: schema.OptionsSource{Static: []schema.Option{
				{Value: "active", Label: "Active"},
				{Value: "paused", Label: "Paused"},
				{Value: "archived", Label: "Archived"},
			}},
			ColorMap: map[string]string{"active": "green", "paused": "amber", "archived": "gray"},
		},
		{Key: "priority", Header: "Priority", Kind: schema.KindPriority, Editable: true, Viewable: true,
			Options: schema.OptionsSource{Static: []schema.Option{
				{Value: "1", Label: "Low"},
				{Value: "2", Label: "Medium"},
				{Value: "3", Label: "High"},
			}},
		},
		{Key: "campaign", Header: "Campaign", Kind: schema.KindSelect, Editable: true, Viewable: true,
			Options: schema.OptionsSource{Static: []schema.Option{
				{Value: "summer-launch", Label: "Summer Launch"},
				{Value: "winter-retarget", Label: "Winter Retarget"},
			}},
		},
		{Key: "adgroup", Header: "Ad Group", Kind: schema.KindSelect, Editable: true, Viewable: true,
			DependsOn: &schema.DependsOn{ParentKey: "campaign", ResolveParent: resolveCampaign},
			Options: schema.OptionsSource{Static: []schema.Option{
				{Value: "summer-video", Label: "Summer / Video"},
				{Value: "summer-display", Label: "Summer / Display"},
				{Value: "winter-social", Label: "Winter / Social"},
			}},
		},
		{Key: "owner", Header: "Owner", Kind: schema.KindPeople, Editable: true, Viewable: true},
		{Key: "headline", Header: "Headline", Kind: schema.KindAdCopy, Editable: true, Viewable: true},
		{Key: "asset_size", Header: "Size", Kind: schema.KindFilesize, Viewable: true},
		{Key: "landing", Header: "Landing Page", Kind: schema.KindURL, Viewable: true},
	})
}

func sampleRows() []schema.Row {
	specs := []struct {
		id       string
		name     string
		status   string
		priority int
		campaign string
		adgroup  string
		owner    string
		headline string
		size     int
		landing  string
	}{
		{"ad-001", "Beach promo", "active", 3, "summer-launch", "summer-video", "alice", "Summer starts here", 482000, "https://example.com/summer"},
		{"ad-002", "Sunset carousel", "active", 2, "summer-launch", "summer-display", "bob", "Golden hour deals", 120500, "https://example.com/sunset"},
		{"ad-003", "Frost teaser", "paused", 1, "winter-retarget", "winter-social", "alice", "Cold-proof your cart", 98000, "https://example.com/frost"},
		{"ad-004", "Holiday bundle", "active", 3, "winter-retarget", "winter-social", "carol", "Wrap it up early", 210000, "https://example.com/holiday"},
		{"ad-005", "Clearance banner", "archived", 1, "summer-launch", "summer-display", "", "Last chance", 76000, ""},
		{"ad-006", "Poolside video", "paused", 2, "summer-launch", "summer-video", "bob", "", 1340000, "https://example.com/pool"},
	}
	rows := make([]schema.Row, 0, len(specs))
	for _, s := range specs {
		rows = append(rows, schema.NewRow(s.id, map[string]any{
			"name":       s.name,
			"status":     s.status,
			"priority":   s.priority,
			"campaign":   s.campaign,
			"adgroup":    s.adgroup,
			"owner":      s.owner,
			"headline":   s.headline,
			"asset_size": s.size,
			"landing":    s.landing,
		}))
	}
	return rows
}
