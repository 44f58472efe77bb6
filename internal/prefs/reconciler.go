package prefs

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// State names the reconciler's lifecycle phase.
type State string

const (
	StateLoading  State = "loading"
	StateResolved State = "resolved"
	StateDirty    State = "dirty"
	StateSaving   State = "saving"
)

// Source says which configuration the session resolved from.
type Source string

const (
	SourceUser    Source = "user"
	SourceTeam    Source = "team"
	SourceDefault Source = "default"
)

// Store is the persistence collaborator. userID is empty for team scope.
// Load returns (nil, nil) when no record exists.
type Store interface {
	Load(ctx context.Context, scope Scope, viewID, userID string) (*Preferences, error)
	Save(ctx context.Context, scope Scope, viewID, userID string, p Preferences) error
	Delete(ctx context.Context, scope Scope, viewID, userID string) error
}

// Options tunes the reconciler. Zero values pick the defaults.
type Options struct {
	Debounce    time.Duration // quiescence window before an auto-save, default 500ms
	LoadTimeout time.Duration // fallback before giving up on slow loads, default 1s
	Logf        func(format string, args ...any)
}

// Reconciler owns the live session preferences and mediates between the three
// configuration tiers: session defaults, the per-user override, and the
// shared team baseline. It is the only component that talks to the Store.
//
// Auto-saves are optimistic: a failed write is logged and the in-memory state
// stands. Each scheduled save captures a snapshot at schedule time, so an
// in-flight save can never clobber newer session state.
type Reconciler struct {
	store  Store
	viewID string
	userID string
	opts   Options

	mu           sync.Mutex
	state        State
	source       Source
	session      Preferences
	team         *Preferences
	timer        *time.Timer
	gen          int // bumped on every (re)schedule and cancellation
	suppressNext bool
}

// NewReconciler starts in Loading with the caller-supplied session defaults.
func NewReconciler(store Store, viewID, userID string, defaults Preferences, opts Options) *Reconciler {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = time.Second
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	session := defaults.Clone()
	session.Version = CurrentVersion
	return &Reconciler{
		store:   store,
		viewID:  viewID,
		userID:  userID,
		opts:    opts,
		state:   StateLoading,
		source:  SourceDefault,
		session: session,
	}
}

// Load fetches user and team preferences concurrently and resolves the
// session: user wins over team, team over the defaults. Load failures are
// logged and treated as "no preferences found". A load that outlasts the
// timeout is abandoned and the session resolves from whatever did arrive.
func (r *Reconciler) Load(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.LoadTimeout)
	defer cancel()

	var user, team *Preferences
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := r.store.Load(gctx, ScopeUser, r.viewID, r.userID)
		if err != nil {
			r.opts.Logf("prefs: load user scope: %v", err)
			return nil
		}
		user = p
		return nil
	})
	g.Go(func() error {
		p, err := r.store.Load(gctx, ScopeTeam, r.viewID, "")
		if err != nil {
			r.opts.Logf("prefs: load team scope: %v", err)
			return nil
		}
		team = p
		return nil
	})
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.team = team
	switch {
	case user != nil:
		r.session = user.Clone()
		r.source = SourceUser
	case team != nil:
		r.session = team.Clone()
		r.source = SourceTeam
	default:
		r.source = SourceDefault
	}
	r.session.Version = CurrentVersion
	r.state = StateResolved
}

// Apply mutates the session preferences. After the initial resolution every
// mutation marks the session dirty and (re)schedules the debounced user-scope
// persist; edits before resolution only update the in-memory defaults.
func (r *Reconciler) Apply(mutate func(*Preferences)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mutate(&r.session)
	if r.state == StateLoading {
		return
	}
	r.state = StateDirty
	r.scheduleLocked()
}

func (r *Reconciler) scheduleLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	gen := r.gen
	snapshot := r.session.Clone()
	r.timer = time.AfterFunc(r.opts.Debounce, func() {
		r.autoSave(gen, snapshot)
	})
}

func (r *Reconciler) autoSave(gen int, snapshot Preferences) {
	r.mu.Lock()
	if gen != r.gen {
		// a newer edit restarted the window; this snapshot is stale
		r.mu.Unlock()
		return
	}
	if r.suppressNext {
		r.suppressNext = false
		r.state = StateResolved
		r.mu.Unlock()
		return
	}
	r.state = StateSaving
	r.mu.Unlock()

	err := r.store.Save(context.Background(), ScopeUser, r.viewID, r.userID, snapshot)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.opts.Logf("prefs: auto-save user scope: %v", err)
	}
	if gen == r.gen && r.state == StateSaving {
		r.state = StateResolved
	}
}

// SaveForEveryone publishes the session to team scope and mirrors the same
// object to user scope, so the publisher's own view equals what they just
// shared. Any pending auto-save is cancelled first and the next auto-save
// cycle is suppressed to avoid a duplicate write racing the mirror. The
// actions pseudo-column width is stripped from the team copy; it is never
// shared.
func (r *Reconciler) SaveForEveryone(ctx context.Context) error {
	r.mu.Lock()
	r.cancelPendingLocked()
	snapshot := r.session.Clone()
	snapshot.Version = CurrentVersion
	r.state = StateSaving
	r.mu.Unlock()

	teamCopy := snapshot.Clone()
	if teamCopy.ColumnWidths != nil {
		delete(teamCopy.ColumnWidths, ActionsWidthKey)
	}
	if err := r.store.Save(ctx, ScopeTeam, r.viewID, "", teamCopy); err != nil {
		r.mu.Lock()
		r.state = StateDirty
		r.mu.Unlock()
		return err
	}
	if err := r.store.Save(ctx, ScopeUser, r.viewID, r.userID, snapshot); err != nil {
		r.opts.Logf("prefs: mirror to user scope: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	team := teamCopy.Clone()
	r.team = &team
	r.suppressNext = true
	r.state = StateResolved
	return nil
}

// Reset deletes the user-scope override so the team baseline becomes
// effective on next load. The session itself is left alone; resetting the
// live state to the team config is the caller's explicit move.
func (r *Reconciler) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.cancelPendingLocked()
	r.mu.Unlock()
	return r.store.Delete(ctx, ScopeUser, r.viewID, r.userID)
}

// Flush persists any pending dirty state immediately, bypassing the debounce
// window. Intended for shutdown.
func (r *Reconciler) Flush(ctx context.Context) error {
	r.mu.Lock()
	r.cancelPendingLocked()
	if r.state != StateDirty {
		r.mu.Unlock()
		return nil
	}
	snapshot := r.session.Clone()
	r.state = StateSaving
	r.mu.Unlock()

	err := r.store.Save(ctx, ScopeUser, r.viewID, r.userID, snapshot)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateDirty
		return err
	}
	r.state = StateResolved
	return nil
}

// Close cancels any pending auto-save without persisting it.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelPendingLocked()
}

func (r *Reconciler) cancelPendingLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
}

// Session returns a copy of the live preferences.
func (r *Reconciler) Session() Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Clone()
}

// SetSession replaces the live preferences wholesale, e.g. when the caller
// resets to the team baseline after Reset.
func (r *Reconciler) SetSession(p Preferences) {
	r.Apply(func(dst *Preferences) { *dst = p.Clone() })
}

// Team returns a copy of the loaded team baseline, or nil if none exists.
func (r *Reconciler) Team() *Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.team == nil {
		return nil
	}
	t := r.team.Clone()
	return &t
}

// State reports the current lifecycle phase.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ResolvedFrom reports which tier the session resolved from at load time.
func (r *Reconciler) ResolvedFrom() Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

// MatchesTeam reports whether the session currently equals the team baseline
// (actions pseudo-column width excluded). Without a team baseline it is
// always false. This is a derived value, recomputed on demand.
func (r *Reconciler) MatchesTeam() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.team == nil {
		return false
	}
	return Matches(r.session, *r.team)
}
