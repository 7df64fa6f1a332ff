package session

// Package session holds the in-memory mirror of the identity
// provider's session, layered with employee/role data. The store is
// owned by the composition root and injected explicitly; consumers
// read snapshots and must never mutate state themselves.

import (
	"sync"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
)

// Store is a concurrency-safe SessionState holder. Writers obtain a
// generation token before starting a resolution; only the most
// recently started resolution may commit, so stale in-flight results
// are discarded instead of racing on last-write-wins.
type Store struct {
	mu        sync.RWMutex
	state     domainauth.SessionState
	started   uint64 // highest generation handed out
	committed uint64 // generation of the current state
}

// NewStore returns a store in the initializing shape: unauthenticated
// with the loading flag set.
func NewStore() *Store {
	return &Store{state: domainauth.SessionState{Loading: true}}
}

// Begin reserves a new resolution generation. The returned token must
// be passed to Commit when the resolution completes.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return s.started
}

// Commit installs the state produced by the resolution identified by
// gen. It reports false, leaving the store untouched, when a newer
// resolution has started or committed since gen was issued.
func (s *Store) Commit(gen uint64, state domainauth.SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.started || gen <= s.committed {
		return false
	}
	state.Loading = false
	s.state = state
	s.committed = gen
	return true
}

// Reset unconditionally installs the zero/unauthenticated shape and
// invalidates every in-flight resolution. Used on sign-out, which
// must always land regardless of races.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	s.committed = s.started
	s.state = domainauth.ZeroSessionState()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domainauth.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether the initial resolution is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}
