package game

import (
	"context"
	"sync"
	"time"

	"chat-game-bot/internal/pkg/lock"
)

// Store is the kind-agnostic view of a Registry used by background jobs and
// the status server.
type Store interface {
	Kind() Kind
	Snapshot() []Session
	WithLock(scopeID int64, fn func() error) error
	TryWithLock(scopeID int64, fn func() error) (bool, error)
	WithLockTimeout(ctx context.Context, scopeID int64, timeout time.Duration, fn func() error) error
	DeleteIf(scopeID int64, match func(Session) bool) (Session, bool)
}

// Registry maps a chat to its live session of one kind.
// Map access is guarded by an RWMutex; command handling for a chat is
// serialized separately through WithLock.
type Registry[S Session] struct {
	kind     Kind
	sessions map[int64]S
	mu       sync.RWMutex
	locks    *lock.KeyLock
}

// NewRegistry creates an empty registry for kind.
func NewRegistry[S Session](kind Kind) *Registry[S] {
	return &Registry[S]{
		kind:     kind,
		sessions: make(map[int64]S),
		locks:    lock.NewKeyLock(),
	}
}

// Kind returns the kind this registry holds.
func (r *Registry[S]) Kind() Kind { return r.kind }

// Get returns the session for scopeID.
func (r *Registry[S]) Get(scopeID int64) (S, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[scopeID]
	return s, ok
}

// Create stores s under its scope. It fails with ErrAlreadyActive when a
// session that has not ended already occupies the scope.
func (r *Registry[S]) Create(s S) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[s.ScopeID()]; ok {
		if existing.Phase() != PhaseEnded {
			return Reject(ErrAlreadyActive, "A %s game is already running in this chat.", r.kind.Title())
		}
		existing.Close()
	}
	r.sessions[s.ScopeID()] = s
	return nil
}

// Delete removes and closes the session for scopeID.
func (r *Registry[S]) Delete(scopeID int64) bool {
	r.mu.Lock()
	s, ok := r.sessions[scopeID]
	delete(r.sessions, scopeID)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// DeleteIf removes the session for scopeID when match accepts it.
func (r *Registry[S]) DeleteIf(scopeID int64, match func(Session) bool) (Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[scopeID]
	if !ok || !match(s) {
		r.mu.Unlock()
		return nil, false
	}
	delete(r.sessions, scopeID)
	r.mu.Unlock()

	s.Close()
	return s, true
}

// WithLock runs fn while holding the scope's lock.
func (r *Registry[S]) WithLock(scopeID int64, fn func() error) error {
	return r.locks.WithLock(scopeID, fn)
}

// TryWithLock runs fn only if the scope's lock is free. It reports whether fn
// ran.
func (r *Registry[S]) TryWithLock(scopeID int64, fn func() error) (bool, error) {
	if !r.locks.TryLock(scopeID) {
		return false, nil
	}
	defer r.locks.Unlock(scopeID)
	return true, fn()
}

// WithLockTimeout runs fn under the scope's lock, failing with
// lock.ErrLockTimeout when the lock is not free within timeout.
func (r *Registry[S]) WithLockTimeout(ctx context.Context, scopeID int64, timeout time.Duration, fn func() error) error {
	return r.locks.WithLockTimeout(ctx, scopeID, timeout, fn)
}

// Sessions returns a copy of the live sessions.
func (r *Registry[S]) Sessions() []S {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]S, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Snapshot returns the live sessions as the Session interface.
func (r *Registry[S]) Snapshot() []Session {
	sessions := r.Sessions()
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		out[i] = s
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry[S]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
