package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/machoraatuti/moringaconnect/internal/app/store"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

// fakeStore records lifecycle transitions the way an entity store would.
type fakeStore struct {
	mu   sync.Mutex
	life store.Lifecycle

	pendings   int
	rejections []string
}

func (f *fakeStore) Pending() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendings++
	return f.life.BeginLocked()
}

func (f *fakeStore) Reject(seq uint64, message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.life.RejectLocked(seq, message) {
		return false
	}
	f.rejections = append(f.rejections, message)
	return true
}

func (f *fakeStore) apply(seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.life.SettleLocked(seq)
}

func TestRunFulfills(t *testing.T) {
	fs := &fakeStore{}
	var applied string

	err := Run(context.Background(), logger.Discard(), Op[string]{
		Store:       "users",
		Name:        "fetchUsers",
		Transitions: fs,
		Exec: func(ctx context.Context) (string, error) {
			return "payload", nil
		},
		Apply: func(seq uint64, v string) bool {
			applied = v
			return fs.apply(seq)
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if applied != "payload" {
		t.Fatalf("applied = %q", applied)
	}
	if fs.pendings != 1 || len(fs.rejections) != 0 {
		t.Fatalf("pendings=%d rejections=%v", fs.pendings, fs.rejections)
	}
}

func TestRunRejectsWithErrorText(t *testing.T) {
	fs := &fakeStore{}

	err := Run(context.Background(), logger.Discard(), Op[string]{
		Store:          "groups",
		Name:           "createGroup",
		FailureMessage: "Failed to create group",
		Transitions:    fs,
		Exec: func(ctx context.Context) (string, error) {
			return "", errors.New("server said no")
		},
		Apply: func(seq uint64, v string) bool {
			t.Fatal("Apply must not run on failure")
			return false
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(fs.rejections) != 1 || fs.rejections[0] != "server said no" {
		t.Fatalf("rejections = %v", fs.rejections)
	}
}

// errNoText carries no message so the operation's fallback is used.
type errNoText struct{}

func (errNoText) Error() string { return "" }

func TestRunFallsBackToFailureMessage(t *testing.T) {
	fs := &fakeStore{}

	_ = Run(context.Background(), logger.Discard(), Op[int]{
		Store:          "posts",
		Name:           "fetchPosts",
		FailureMessage: "Failed to load posts",
		Transitions:    fs,
		Exec: func(ctx context.Context) (int, error) {
			return 0, errNoText{}
		},
		Apply: func(seq uint64, v int) bool { return true },
	})
	if len(fs.rejections) != 1 || fs.rejections[0] != "Failed to load posts" {
		t.Fatalf("rejections = %v", fs.rejections)
	}
}

func TestRunSettlesPanicsAsRejections(t *testing.T) {
	fs := &fakeStore{}

	err := Run(context.Background(), logger.Discard(), Op[int]{
		Store:          "events",
		Name:           "fetchEvents",
		FailureMessage: "Failed to load events",
		Transitions:    fs,
		Exec: func(ctx context.Context) (int, error) {
			panic("nil map write")
		},
		Apply: func(seq uint64, v int) bool { return true },
	})
	if err == nil {
		t.Fatal("panic must surface as an error")
	}
	if len(fs.rejections) != 1 {
		t.Fatalf("rejections = %v, want exactly one settlement", fs.rejections)
	}
	if fs.life.LoadingLocked() {
		t.Fatal("loading stuck after panic")
	}
}

func TestRunDropsStaleSettlementWithFencing(t *testing.T) {
	fs := &fakeStore{}
	fs.life.EnableFencing()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	var staleApplied bool
	go func() {
		defer wg.Done()
		_ = Run(context.Background(), logger.Discard(), Op[string]{
			Store:       "users",
			Name:        "fetchUsers",
			Transitions: fs,
			Exec: func(ctx context.Context) (string, error) {
				<-release
				return "stale", nil
			},
			Apply: func(seq uint64, v string) bool {
				if fs.apply(seq) {
					staleApplied = true
					return true
				}
				return false
			},
		})
	}()

	// A second operation supersedes the first while it is still in flight.
	for {
		fs.mu.Lock()
		started := fs.pendings == 1
		fs.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}
	err := Run(context.Background(), logger.Discard(), Op[string]{
		Store:       "users",
		Name:        "fetchUsers",
		Transitions: fs,
		Exec: func(ctx context.Context) (string, error) {
			return "fresh", nil
		},
		Apply: func(seq uint64, v string) bool { return fs.apply(seq) },
	})
	if err != nil {
		t.Fatalf("fresh Run: %v", err)
	}

	close(release)
	wg.Wait()
	if staleApplied {
		t.Fatal("superseded fulfillment reached the store")
	}
}
