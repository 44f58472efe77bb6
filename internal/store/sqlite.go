package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vantell/gridkit/internal/prefs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens sqlite with sensible defaults.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return db, nil
}

// RunMigrations applies the embedded migrations to an open database.
func RunMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// SQLiteStore persists view preferences in a sqlite table, one JSON blob per
// (scope, view, user).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore { return &SQLiteStore{db: db} }

func (s *SQLiteStore) Load(ctx context.Context, scope prefs.Scope, viewID, userID string) (*prefs.Preferences, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
	SELECT prefs FROM view_prefs WHERE scope = ? AND view_id = ? AND user_id = ?`,
		string(scope), viewID, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}
	var p prefs.Preferences
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("decode prefs: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) Save(ctx context.Context, scope prefs.Scope, viewID, userID string, p prefs.Preferences) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO view_prefs(scope, view_id, user_id, prefs, updated_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(scope, view_id, user_id)
	DO UPDATE SET prefs = excluded.prefs, updated_at = CURRENT_TIMESTAMP`,
		string(scope), viewID, userID, string(payload))
	if err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, scope prefs.Scope, viewID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
	DELETE FROM view_prefs WHERE scope = ? AND view_id = ? AND user_id = ?`,
		string(scope), viewID, userID)
	if err != nil {
		return fmt.Errorf("delete prefs: %w", err)
	}
	return nil
}
