// Package runner sequences asynchronous store operations through their
// three-phase lifecycle: a pending transition dispatched synchronously, one
// executor call against the gateway, and exactly one settlement, fulfilled
// or rejected, never both.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/machoraatuti/moringaconnect/internal/app/metrics"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

// Transitions is the slice of a store the runner drives. The fulfilled
// transition is operation-specific and supplied per Op as Apply.
type Transitions interface {
	// Pending marks the operation in flight and returns its sequence id.
	Pending() uint64
	// Reject records a failed settlement. Returns false when the settlement
	// was superseded and dropped.
	Reject(seq uint64, message string) bool
}

// Op describes one asynchronous operation.
type Op[T any] struct {
	// Store and Name identify the operation in logs and metrics.
	Store string
	Name  string

	// FailureMessage is the operation-specific default used when the
	// executor's error carries no text.
	FailureMessage string

	Transitions Transitions

	// Exec performs the I/O and produces the fulfillment payload.
	Exec func(ctx context.Context) (T, error)

	// Apply merges the payload into the store. Returns false when the
	// settlement was superseded and dropped.
	Apply func(seq uint64, value T) bool
}

// Run drives op to settlement. The pending transition is dispatched before
// Exec starts; a panic inside Exec settles as a rejection. There is no
// cancellation: a superseded operation still settles, and unless the store
// has fencing enabled the last settlement wins.
func Run[T any](ctx context.Context, log *logger.Logger, op Op[T]) error {
	if log == nil {
		log = logger.NewDefault("runner")
	}

	seq := op.Transitions.Pending()
	metrics.ObservePhase(op.Store, op.Name, metrics.PhasePending)
	started := time.Now()

	value, err := exec(ctx, op.Exec)
	metrics.ObserveDuration(op.Store, op.Name, time.Since(started))

	if err != nil {
		metrics.ObservePhase(op.Store, op.Name, metrics.PhaseRejected)
		message := err.Error()
		if message == "" {
			message = op.FailureMessage
		}
		if !op.Transitions.Reject(seq, message) {
			log.WithField("store", op.Store).
				WithField("operation", op.Name).
				Debug("stale rejection dropped")
		}
		log.WithError(err).
			WithField("store", op.Store).
			WithField("operation", op.Name).
			Warn("operation rejected")
		return err
	}

	metrics.ObservePhase(op.Store, op.Name, metrics.PhaseFulfilled)
	if !op.Apply(seq, value) {
		log.WithField("store", op.Store).
			WithField("operation", op.Name).
			Debug("stale fulfillment dropped")
	}
	return nil
}

// exec invokes fn, converting a panic into an ordinary rejection so the
// operation still settles exactly once.
func exec[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return fn(ctx)
}
