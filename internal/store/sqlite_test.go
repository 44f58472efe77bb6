package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantell/gridkit/internal/prefs"
	"github.com/vantell/gridkit/internal/schema"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "gridkit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunMigrations(db))
	return NewSQLiteStore(db)
}

func samplePrefs() prefs.Preferences {
	return prefs.Preferences{
		Version:      prefs.CurrentVersion,
		SortConfig:   []schema.SortRule{{ID: "s1", Key: "amt", Direction: schema.Desc}},
		FilterConfig: []schema.FilterRule{{ID: "f1", Field: "status", Operator: schema.OpIs, Value: "open", Conjunction: schema.ConjunctionAnd}},
		ColumnWidths: map[string]int{"amt": 12},
		RowOrder:     []string{"2", "1"},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, prefs.ScopeUser, "v1", "u1", samplePrefs()))
	got, err := s.Load(ctx, prefs.ScopeUser, "v1", "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, samplePrefs(), *got)
}

func TestSQLiteMissingRecordIsNil(t *testing.T) {
	s := openTestDB(t)
	got, err := s.Load(context.Background(), prefs.ScopeUser, "v1", "nobody")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteSaveOverwrites(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	p := samplePrefs()
	require.NoError(t, s.Save(ctx, prefs.ScopeTeam, "v1", "", p))
	p.ThumbnailSize = "large"
	require.NoError(t, s.Save(ctx, prefs.ScopeTeam, "v1", "", p))

	got, err := s.Load(ctx, prefs.ScopeTeam, "v1", "")
	require.NoError(t, err)
	require.Equal(t, "large", got.ThumbnailSize)
}

func TestSQLiteScopesAreIndependent(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	user := samplePrefs()
	team := samplePrefs()
	team.ThumbnailSize = "small"
	require.NoError(t, s.Save(ctx, prefs.ScopeUser, "v1", "u1", user))
	require.NoError(t, s.Save(ctx, prefs.ScopeTeam, "v1", "", team))

	gotUser, err := s.Load(ctx, prefs.ScopeUser, "v1", "u1")
	require.NoError(t, err)
	gotTeam, err := s.Load(ctx, prefs.ScopeTeam, "v1", "")
	require.NoError(t, err)
	require.Empty(t, gotUser.ThumbnailSize)
	require.Equal(t, "small", gotTeam.ThumbnailSize)
}

func TestSQLiteDelete(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, prefs.ScopeUser, "v1", "u1", samplePrefs()))
	require.NoError(t, s.Delete(ctx, prefs.ScopeUser, "v1", "u1"))
	got, err := s.Load(ctx, prefs.ScopeUser, "v1", "u1")
	require.NoError(t, err)
	require.Nil(t, got)

	// deleting a missing record is not an error
	require.NoError(t, s.Delete(ctx, prefs.ScopeUser, "v1", "u1"))
}
