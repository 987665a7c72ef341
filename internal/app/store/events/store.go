// Package events owns the event collection and the notification feed the
// event operations append to.
package events

import (
	"sync"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/event"
	"github.com/machoraatuti/moringaconnect/internal/app/store"
)

// State is a point-in-time copy of the store.
type State struct {
	Events        []event.Event
	Notifications []event.Notification
	IsLoading     bool
	ErrMess       string
}

// Store is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	life          store.Lifecycle
	events        []event.Event
	notifications []event.Notification
	notify        func()
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
func (s *Store) ReplaceAll(seq uint64, items []event.Event) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.events = append([]event.Event(nil), items...)
	s.mu.Unlock()
	s.changed()
	return true
}

// Add appends a newly created event to the calendar.
func (s *Store) Add(seq uint64, e event.Event) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.events = append(s.events, e)
	s.mu.Unlock()
	s.changed()
	return true
}

// SetStatus patches one event to the server's updated view and pushes the
// announcement to the front of the notification feed. A missing event id
// leaves the collection untouched but still records the notification.
func (s *Store) SetStatus(seq uint64, updated event.Event, n event.Notification) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.events {
		if s.events[i].ID == updated.ID {
			s.events[i] = updated
			break
		}
	}
	s.notifications = append([]event.Notification{n}, s.notifications...)
	s.mu.Unlock()
	s.changed()
	return true
}

// Remove deletes an event by id and pushes the cancellation announcement.
// Removing an absent id leaves the collection unchanged.
func (s *Store) Remove(seq uint64, eventID string, n event.Notification) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.events {
		if s.events[i].ID == eventID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			break
		}
	}
	s.notifications = append([]event.Notification{n}, s.notifications...)
	s.mu.Unlock()
	s.changed()
	return true
}

// DismissNotification drops a single announcement. Unknown ids are a no-op.
func (s *Store) DismissNotification(id string) {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
}

// DismissAllNotifications clears the announcement feed.
func (s *Store) DismissAllNotifications() {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
	s.changed()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Events:        append([]event.Event(nil), s.events...),
		Notifications: append([]event.Notification(nil), s.notifications...),
		IsLoading:     s.life.LoadingLocked(),
		ErrMess:       s.life.ErrMessLocked(),
	}
}
