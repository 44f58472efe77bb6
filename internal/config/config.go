package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Store StoreConfig
	Prefs PrefsConfig
	View  ViewConfig
}

// StoreConfig selects and locates the preference backend.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // "sqlite" or "diskv"
	SQLitePath string `mapstructure:"sqlite_path"`
	DiskvPath  string `mapstructure:"diskv_path"`
}

// PrefsConfig tunes the preference reconciler.
type PrefsConfig struct {
	DebounceMs    int `mapstructure:"debounce_ms"`
	LoadTimeoutMs int `mapstructure:"load_timeout_ms"`
}

// ViewConfig holds presentation settings.
type ViewConfig struct {
	PageSize int    `mapstructure:"page_size"`
	UserID   string `mapstructure:"user_id"`
}

// Debounce returns the auto-save quiescence window.
func (p PrefsConfig) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

// LoadTimeout returns the preference-load fallback timeout.
func (p PrefsConfig) LoadTimeout() time.Duration {
	return time.Duration(p.LoadTimeoutMs) * time.Millisecond
}

// Load reads configuration from file and env. Env var overrides use prefix GRIDKIT_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "gridkit")

	// default values
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", filepath.Join(dataDir, "gridkit.db"))
	v.SetDefault("store.diskv_path", filepath.Join(dataDir, "prefs"))
	v.SetDefault("prefs.debounce_ms", 500)
	v.SetDefault("prefs.load_timeout_ms", 1000)
	v.SetDefault("view.page_size", 25)
	v.SetDefault("view.user_id", os.Getenv("USER"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("GRIDKIT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "gridkit"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GRIDKIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the TUI settings view.
func Save(cfg Config) error {
	path := os.Getenv("GRIDKIT_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "gridkit", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("store.backend", cfg.Store.Backend)
	v.Set("store.sqlite_path", cfg.Store.SQLitePath)
	v.Set("store.diskv_path", cfg.Store.DiskvPath)
	v.Set("prefs.debounce_ms", cfg.Prefs.DebounceMs)
	v.Set("prefs.load_timeout_ms", cfg.Prefs.LoadTimeoutMs)
	v.Set("view.page_size", cfg.View.PageSize)
	v.Set("view.user_id", cfg.View.UserID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
