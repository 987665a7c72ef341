// Package groups owns the normalized group collection and its request
// lifecycle.
package groups

import (
	"sync"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/group"
	"github.com/machoraatuti/moringaconnect/internal/app/store"
)

// State is a point-in-time copy of the store.
type State struct {
	Groups    []group.Group
	IsLoading bool
	ErrMess   string
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	life   store.Lifecycle
	groups []group.Group
	notify func()
}

// New creates an empty store.
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
func (s *Store) ReplaceAll(seq uint64, items []group.Group) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.groups = append([]group.Group(nil), items...)
	s.mu.Unlock()
	s.changed()
	return true
}

// Add prepends a newly created group so it surfaces first.
func (s *Store) Add(seq uint64, g group.Group) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.groups = append([]group.Group{g}, s.groups...)
	s.mu.Unlock()
	s.changed()
	return true
}

// Patch replaces the group with the matching id. Used by update and join,
// both of which receive the server's view of the group. Unknown ids are a
// no-op.
func (s *Store) Patch(seq uint64, g group.Group) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.groups {
		if s.groups[i].ID == g.ID {
			s.groups[i] = g
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// Remove deletes a group by id. Removing an absent id is a no-op.
func (s *Store) Remove(seq uint64, groupID string) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
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
		Groups:    append([]group.Group(nil), s.groups...),
		IsLoading: s.life.LoadingLocked(),
		ErrMess:   s.life.ErrMessLocked(),
	}
}
