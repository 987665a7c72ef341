// Package store holds the request-lifecycle state machine shared by every
// entity store: Idle -> Pending -> Fulfilled|Rejected -> Idle. A store tracks
// one in-flight listing flag, not per-item state.
package store

// Lifecycle tracks loading and error state for a store. It is embedded in
// each entity store and must only be touched with the owning store's lock
// held.
//
// Sequencing: every Pending issues a monotonically increasing operation id.
// By default settlements apply in whatever order they arrive (last-settled
// wins, matching the legacy behavior). With fencing enabled, a settlement
// that has been superseded by a newer issued operation is ignored entirely.
type Lifecycle struct {
	loading bool
	errMess string
	fenced  bool
	issued  uint64
}

// EnableFencing turns on stale-settlement rejection for this store.
func (l *Lifecycle) EnableFencing() { l.fenced = true }

// BeginLocked records a pending transition: loading set, error cleared.
// Returns the operation id the settlement must present.
func (l *Lifecycle) BeginLocked() uint64 {
	l.issued++
	l.loading = true
	l.errMess = ""
	return l.issued
}

// SettleLocked records the terminal transition for operation seq. It reports
// false, leaving all state untouched, when fencing is enabled and a newer
// operation has been issued since seq.
func (l *Lifecycle) SettleLocked(seq uint64) bool {
	if l.fenced && seq < l.issued {
		return false
	}
	l.loading = false
	return true
}

// RejectLocked is SettleLocked plus the error message. Callers resolve
// operation-specific fallback messages before calling.
func (l *Lifecycle) RejectLocked(seq uint64, message string) bool {
	if !l.SettleLocked(seq) {
		return false
	}
	l.errMess = message
	return true
}

// ClearErrorLocked discards the stored error without touching loading state.
func (l *Lifecycle) ClearErrorLocked() { l.errMess = "" }

// LoadingLocked reports whether an operation is in flight.
func (l *Lifecycle) LoadingLocked() bool { return l.loading }

// ErrMessLocked returns the last rejection message, empty when none.
func (l *Lifecycle) ErrMessLocked() string { return l.errMess }
