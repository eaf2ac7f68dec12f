// Package auth holds the client-side authentication session and notifies
// subscribers of sign-in state changes.
package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User is the authenticated user of the current session.
type User struct {
	ID    uuid.UUID
	Email string
}

// SignOutFunc terminates the remote session.
type SignOutFunc func(ctx context.Context) error

// Session holds the current user and broadcasts sign-in state changes.
// A nil user means signed out.
type Session struct {
	mu        sync.Mutex
	user      *User
	listeners map[int]func(*User)
	nextID    int
	signOut   SignOutFunc
	logger    zerolog.Logger
}

// NewSession creates a session manager. signOut may be nil when there is
// no remote session to terminate.
func NewSession(signOut SignOutFunc, logger zerolog.Logger) *Session {
	return &Session{
		listeners: make(map[int]func(*User)),
		signOut:   signOut,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Current returns the authenticated user, or nil when signed out.
func (s *Session) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Establish records a sign-in and notifies subscribers.
func (s *Session) Establish(user User) {
	s.mu.Lock()
	s.user = &user
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info().Str("user_id", user.ID.String()).Msg("session established")

	for _, fn := range listeners {
		fn(&user)
	}
}

// SignOut terminates the remote session, clears the local user, and
// notifies subscribers. The local state is cleared even when the remote
// call fails.
func (s *Session) SignOut(ctx context.Context) error {
	var err error
	if s.signOut != nil {
		err = s.signOut(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("remote sign-out failed")
		}
	}

	s.mu.Lock()
	s.user = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info().Msg("session cleared")

	for _, fn := range listeners {
		fn(nil)
	}

	return err
}

// Subscribe registers a listener for sign-in state changes and returns an
// unsubscribe function. The listener receives the new user, or nil on
// sign-out.
func (s *Session) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners copies the listener set; callers must hold the mutex.
func (s *Session) snapshotListeners() []func(*User) {
	listeners := make([]func(*User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}
