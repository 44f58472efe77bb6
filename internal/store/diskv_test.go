package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantell/gridkit/internal/prefs"
)

func TestDiskvRoundTrip(t *testing.T) {
	s := NewDiskvStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, prefs.ScopeUser, "v1", "u1", samplePrefs()))
	got, err := s.Load(ctx, prefs.ScopeUser, "v1", "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, samplePrefs(), *got)
}

func TestDiskvMissingRecordIsNil(t *testing.T) {
	s := NewDiskvStore(t.TempDir())
	got, err := s.Load(context.Background(), prefs.ScopeTeam, "v1", "")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDiskvTeamAndUserKeysDoNotCollide(t *testing.T) {
	s := NewDiskvStore(t.TempDir())
	ctx := context.Background()

	team := samplePrefs()
	team.ThumbnailSize = "small"
	require.NoError(t, s.Save(ctx, prefs.ScopeTeam, "v1", "", team))
	require.NoError(t, s.Save(ctx, prefs.ScopeUser, "v1", "u1", samplePrefs()))

	gotTeam, err := s.Load(ctx, prefs.ScopeTeam, "v1", "")
	require.NoError(t, err)
	require.Equal(t, "small", gotTeam.ThumbnailSize)
}

func TestDiskvDeleteIsIdempotent(t *testing.T) {
	s := NewDiskvStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, prefs.ScopeUser, "v1", "u1", samplePrefs()))
	require.NoError(t, s.Delete(ctx, prefs.ScopeUser, "v1", "u1"))
	require.NoError(t, s.Delete(ctx, prefs.ScopeUser, "v1", "u1"))

	got, err := s.Load(ctx, prefs.ScopeUser, "v1", "u1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPrefsKeyTransformRoundTrip(t *testing.T) {
	for _, key := range []string{"user/v1/u1", "team/v1/-"} {
		pk := prefsKeyTransform(key)
		require.Equal(t, key, prefsPathTransform(pk))
	}
}
