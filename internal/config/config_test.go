package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRIDKIT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Fatalf("backend = %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Prefs.DebounceMs != 500 || cfg.Prefs.LoadTimeoutMs != 1000 {
		t.Fatalf("prefs timings = %d/%d, want 500/1000", cfg.Prefs.DebounceMs, cfg.Prefs.LoadTimeoutMs)
	}
	if cfg.View.PageSize != 25 {
		t.Fatalf("page size = %d, want 25", cfg.View.PageSize)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GRIDKIT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GRIDKIT_STORE_BACKEND", "diskv")
	t.Setenv("GRIDKIT_VIEW_PAGE_SIZE", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "diskv" {
		t.Fatalf("backend = %q, want env override diskv", cfg.Store.Backend)
	}
	if cfg.View.PageSize != 10 {
		t.Fatalf("page size = %d, want env override 10", cfg.View.PageSize)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("GRIDKIT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.View.PageSize = 50
	cfg.Store.Backend = "diskv"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.View.PageSize != 50 || got.Store.Backend != "diskv" {
		t.Fatalf("round trip lost settings: %+v", got)
	}
}
