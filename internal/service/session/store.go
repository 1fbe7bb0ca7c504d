package session

import (
	"context"
	"sync"

	"github.com/habalhub/habal-hub/internal/domain/user"
)

// Store mirrors the current identity for one consumer (a websocket
// connection, typically): the resolved user plus a loading flag while a
// refresh is in flight. The flag is released on every path, including
// errors, so a consumer can never be stuck loading.
type Store struct {
	mu      sync.RWMutex
	user    *user.User
	loading bool
}

// Snapshot is a point-in-time view of the store.
type Snapshot struct {
	User    *user.User
	Loading bool
}

// NewStore creates an empty store in the loading state, matching a
// consumer that has not resolved its session yet.
func NewStore() *Store {
	return &Store{loading: true}
}

// Refresh resolves the session via the given function and replaces the
// current user with the result. A failed resolve clears the user.
func (s *Store) Refresh(ctx context.Context, resolve func(ctx context.Context) (*user.User, error)) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	u, err := resolve(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.user = nil
	} else {
		s.user = u
	}
	s.loading = false
}

// Apply folds an auth-state event into the store.
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventSignedOut:
		s.user = nil
	case EventSignedIn, EventProfileUpdated:
		s.user = ev.User
	}
	s.loading = false
}

// Clear drops the current user and releases the loading flag.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.loading = false
}

// Snapshot returns the current user and loading state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: s.user, Loading: s.loading}
}
