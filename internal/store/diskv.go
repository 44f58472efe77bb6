package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/vantell/gridkit/internal/prefs"
)

// DiskvStore persists view preferences as JSON files under a base directory,
// via diskv. It is the file-backed alternative to sqlite for installs that
// want greppable per-view files.
type DiskvStore struct {
	d *diskv.Diskv
}

// NewDiskvStore creates a store rooted at basePath.
func NewDiskvStore(basePath string) *DiskvStore {
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: prefsKeyTransform,
		InverseTransform:  prefsPathTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

// prefsKey flattens (scope, view, user) into one diskv key. The user segment
// is "-" for team scope so the path depth stays constant.
func prefsKey(scope prefs.Scope, viewID, userID string) string {
	if userID == "" {
		userID = "-"
	}
	return fmt.Sprintf("%s/%s/%s", scope, viewID, userID)
}

func prefsKeyTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	last := len(parts) - 1
	return &diskv.PathKey{Path: parts[:last], FileName: parts[last] + ".json"}
}

func prefsPathTransform(pk *diskv.PathKey) string {
	name := strings.TrimSuffix(pk.FileName, ".json")
	return strings.Join(append(append([]string{}, pk.Path...), name), "/")
}

func (s *DiskvStore) Load(ctx context.Context, scope prefs.Scope, viewID, userID string) (*prefs.Preferences, error) {
	key := prefsKey(scope, viewID, userID)
	if !s.d.Has(key) {
		return nil, nil
	}
	data, err := s.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}
	var p prefs.Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode prefs: %w", err)
	}
	return &p, nil
}

func (s *DiskvStore) Save(ctx context.Context, scope prefs.Scope, viewID, userID string, p prefs.Preferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := s.d.Write(prefsKey(scope, viewID, userID), data); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

func (s *DiskvStore) Delete(ctx context.Context, scope prefs.Scope, viewID, userID string) error {
	key := prefsKey(scope, viewID, userID)
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("delete prefs: %w", err)
	}
	return nil
}
