// Package users owns the normalized directory collection and its request
// lifecycle.
package users

import (
	"sync"
	"time"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/user"
	"github.com/machoraatuti/moringaconnect/internal/app/store"
)

// State is a point-in-time copy of the store.
type State struct {
	Users     []user.User
	IsLoading bool
	ErrMess   string
}

// Store is safe for concurrent use. All mutation goes through reducer-style
// methods; readers receive copies.
type Store struct {
	mu     sync.RWMutex
	life   store.Lifecycle
	users  []user.User
	notify func()
}

// New creates an empty store.
func New() *Store { return &Store{} }

// EnableFencing makes the store ignore settlements superseded by a newer
// pending transition.
func (s *Store) EnableFencing() {
	s.mu.Lock()
	s.life.EnableFencing()
	s.mu.Unlock()
}

// OnChange registers a callback invoked after every state change. Set once
// during composition, before any operation runs.
func (s *Store) OnChange(fn func()) { s.notify = fn }

func (s *Store) changed() {
	if s.notify != nil {
		s.notify()
	}
}

// Pending marks the listing operation in flight and clears any prior error.
func (s *Store) Pending() uint64 {
	s.mu.Lock()
	seq := s.life.BeginLocked()
	s.mu.Unlock()
	s.changed()
	return seq
}

// Reject records a failed settlement.
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

// ReplaceAll swaps in a freshly fetched collection.
func (s *Store) ReplaceAll(seq uint64, items []user.User) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.users = append([]user.User(nil), items...)
	s.mu.Unlock()
	s.changed()
	return true
}

// Add appends a newly created user to the collection.
func (s *Store) Add(seq uint64, u user.User) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.users = append(s.users, u)
	s.mu.Unlock()
	s.changed()
	return true
}

// SetPresence patches one user's online flag and last-seen timestamp.
// Unknown ids are a no-op; the settlement still applies.
func (s *Store) SetPresence(seq uint64, userID string, online bool, lastSeen time.Time) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].IsOnline = online
			s.users[i].LastSeen = lastSeen
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// Remove deletes a user by id. Removing an absent id is a no-op.
func (s *Store) Remove(seq uint64, userID string) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Users:     append([]user.User(nil), s.users...),
		IsLoading: s.life.LoadingLocked(),
		ErrMess:   s.life.ErrMessLocked(),
	}
}
