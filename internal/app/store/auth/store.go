// Package auth owns the session state: current user, bearer token, and the
// derived admin flag.
package auth

import (
	"sync"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/auth"
	"github.com/machoraatuti/moringaconnect/internal/app/domain/user"
	"github.com/machoraatuti/moringaconnect/internal/app/store"
)

// State is a point-in-time copy of the store. IsAdmin is always derived from
// User.Role; nothing sets it independently.
type State struct {
	User            *user.User
	Token           string
	IsAuthenticated bool
	IsAdmin         bool
	LogoutSuccess   bool
	IsLoading       bool
	ErrMess         string
}

// Store is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	life          store.Lifecycle
	user          *user.User
	token         string
	authenticated bool
	logoutSuccess bool
	notify        func()
}

// New creates a signed-out store.
func New() *Store { return &Store{} }

// EnableFencing makes the store ignore superseded settlements.
func (s *Store) EnableFencing() {
	s.mu.Lock()
	s.life.EnableFencing()
	s.mu.Unlock()
}

// OnChange registers a callback invoked after every state change.
func (s *Store) OnChange(fn func()) { s.notify = fn }

func (s *Store) changed() {
	if s.notify != nil {
		s.notify()
	}
}

// Pending marks an auth operation in flight and clears any prior error.
func (s *Store) Pending() uint64 {
	s.mu.Lock()
	seq := s.life.BeginLocked()
	s.mu.Unlock()
	s.changed()
	return seq
}

// Reject records a failed settlement. Pre-existing session state is kept: a
// failed login leaves the previous session alone, and a failed logout keeps
// the user signed in locally.
func (s *Store) Reject(seq uint64, message string) bool {
	s.mu.Lock()
	ok := s.life.RejectLocked(seq, message)
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// ClearError discards the stored error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.life.ClearErrorLocked()
	s.mu.Unlock()
	s.changed()
}

// SetSession installs an authenticated session. The admin flag is derived
// from the user's role here and nowhere else.
func (s *Store) SetSession(seq uint64, sess auth.Session) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	u := sess.User
	s.user = &u
	s.token = sess.Token
	s.authenticated = true
	s.mu.Unlock()
	s.changed()
	return true
}

// ClearSession ends the session after a successful server-side logout and
// raises the one-shot LogoutSuccess flag.
func (s *Store) ClearSession(seq uint64) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.logoutSuccess = true
	s.life.ClearErrorLocked()
	s.mu.Unlock()
	s.changed()
	return true
}

// ResetLogoutStatus lowers the one-shot LogoutSuccess flag. Consumers call
// this after acting on a completed logout.
func (s *Store) ResetLogoutStatus() {
	s.mu.Lock()
	s.logoutSuccess = false
	s.mu.Unlock()
	s.changed()
}

// Restore seeds the session from a durable snapshot at startup. It is not a
// settlement and leaves the request lifecycle untouched.
func (s *Store) Restore(u *user.User, token string) {
	s.mu.Lock()
	if u != nil {
		copied := *u
		s.user = &copied
	} else {
		s.user = nil
	}
	s.token = token
	s.authenticated = u != nil && token != ""
	s.mu.Unlock()
	s.changed()
}

// Token returns the current bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Token:           s.token,
		IsAuthenticated: s.authenticated,
		LogoutSuccess:   s.logoutSuccess,
		IsLoading:       s.life.LoadingLocked(),
		ErrMess:         s.life.ErrMessLocked(),
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
		st.IsAdmin = u.IsAdmin()
	}
	return st
}
