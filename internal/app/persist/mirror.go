package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

// SnapshotFunc produces the current persisted subset of the state tree.
type SnapshotFunc func() AuthSnapshot

// Mirror asynchronously copies the persisted subset of the state tree to
// durable storage after each change. It never blocks the dispatch that
// triggered the change: Notify coalesces signals into a single-slot channel
// and a background goroutine does the writing. The mirror tolerates the tree
// changing again before a write completes; persistence is eventual, not
// atomic.
//
// Control signals are a direct API (Rehydrate, Flush, Pause, Resume, Purge)
// rather than in-band actions.
type Mirror struct {
	storage  Storage
	snapshot SnapshotFunc
	log      *logger.Logger

	signal      chan struct{}
	onRehydrate func(AuthSnapshot)

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	paused  bool
}

// NewMirror creates a mirror over the given storage.
func NewMirror(storage Storage, snapshot SnapshotFunc, log *logger.Logger) *Mirror {
	if log == nil {
		log = logger.NewDefault("persist-mirror")
	}
	return &Mirror{
		storage:  storage,
		snapshot: snapshot,
		log:      log,
		signal:   make(chan struct{}, 1),
	}
}

// OnRehydrate registers a callback invoked with the restored snapshot (or
// the zero snapshot when none was found). Set before calling Rehydrate.
func (m *Mirror) OnRehydrate(fn func(AuthSnapshot)) { m.onRehydrate = fn }

// Rehydrate loads the prior snapshot and hands it to the OnRehydrate
// callback. A missing or corrupt snapshot falls back to the signed-out
// default; corruption is logged, never fatal.
func (m *Mirror) Rehydrate(ctx context.Context) error {
	var snap AuthSnapshot

	raw, err := m.storage.Load(ctx, KeyAuthState)
	switch {
	case errors.Is(err, ErrNotFound):
		// First launch.
	case err != nil:
		return err
	default:
		snap, err = DecodeAuthSnapshot(raw)
		if err != nil {
			m.log.WithError(err).Warn("corrupt auth snapshot; starting signed out")
			snap = AuthSnapshot{}
		}
	}

	if m.onRehydrate != nil {
		m.onRehydrate(snap)
	}
	return nil
}

// Notify schedules an asynchronous flush. Safe to call from any goroutine;
// never blocks.
func (m *Mirror) Notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Flush writes the current snapshot synchronously.
func (m *Mirror) Flush(ctx context.Context) error {
	raw, err := m.snapshot().Encode()
	if err != nil {
		return err
	}
	return m.storage.Save(ctx, KeyAuthState, raw)
}

// Pause stops mirroring until Resume. Notifications received while paused
// are applied on the next flush after resuming.
func (m *Mirror) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

// Resume re-enables mirroring and schedules a catch-up flush.
func (m *Mirror) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	m.Notify()
}

// Purge removes every persisted key.
func (m *Mirror) Purge(ctx context.Context) error {
	return m.storage.Delete(ctx, KeyAuthState, KeyToken, KeyUser, KeyRole)
}

// Name implements the lifecycle service interface.
func (m *Mirror) Name() string { return "persist-mirror" }

// Start launches the background writer.
func (m *Mirror) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.running = true
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-m.signal:
				m.mu.Lock()
				paused := m.paused
				m.mu.Unlock()
				if paused {
					continue
				}
				writeCtx, cancelWrite := context.WithTimeout(runCtx, 5*time.Second)
				if err := m.Flush(writeCtx); err != nil {
					m.log.WithError(err).Warn("state mirror write failed")
				}
				cancelWrite()
			}
		}
	}()

	m.log.Info("state mirror started")
	return nil
}

// Stop flushes once more and shuts the writer down.
func (m *Mirror) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	if err := m.Flush(ctx); err != nil {
		m.log.WithError(err).Warn("final state flush failed")
	}

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.log.Info("state mirror stopped")
	return nil
}
