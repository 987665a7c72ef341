package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/user"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

func newTestMirror(t *testing.T, snap SnapshotFunc) (*Mirror, *FileStorage) {
	t.Helper()
	fs, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	return NewMirror(fs, snap, logger.Discard()), fs
}

func TestRehydrateMissingSnapshotYieldsSignedOut(t *testing.T) {
	m, _ := newTestMirror(t, func() AuthSnapshot { return AuthSnapshot{} })

	var got AuthSnapshot
	var called bool
	m.OnRehydrate(func(s AuthSnapshot) { got, called = s, true })

	if err := m.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if !called {
		t.Fatal("OnRehydrate not invoked")
	}
	if got.IsAuthenticated || got.User != nil || got.Token != "" {
		t.Fatalf("snapshot = %+v, want signed out", got)
	}
}

func TestRehydrateCorruptSnapshotFallsBackSignedOut(t *testing.T) {
	m, fs := newTestMirror(t, func() AuthSnapshot { return AuthSnapshot{} })
	if err := fs.Save(context.Background(), KeyAuthState, []byte("{not json")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got AuthSnapshot
	m.OnRehydrate(func(s AuthSnapshot) { got = s })

	if err := m.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate must not fail on corruption: %v", err)
	}
	if got.IsAuthenticated {
		t.Fatalf("snapshot = %+v, want signed out", got)
	}
}

func TestRehydrateRederivesAdminFromRole(t *testing.T) {
	m, fs := newTestMirror(t, func() AuthSnapshot { return AuthSnapshot{} })

	// A tampered snapshot claims admin for a member role.
	tampered := []byte(`{"user":{"id":"u1","role":"member"},"token":"tok","isAuthenticated":true,"isAdmin":true}`)
	if err := fs.Save(context.Background(), KeyAuthState, tampered); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var got AuthSnapshot
	m.OnRehydrate(func(s AuthSnapshot) { got = s })
	if err := m.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if got.IsAdmin {
		t.Fatal("tampered snapshot granted admin")
	}
	if !got.IsAuthenticated || got.Token != "tok" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestFlushWritesCurrentSnapshot(t *testing.T) {
	snap := AuthSnapshot{
		User:            &user.User{ID: "u1", Role: user.RoleAdmin},
		Token:           "tok",
		IsAuthenticated: true,
		IsAdmin:         true,
	}
	m, fs := newTestMirror(t, func() AuthSnapshot { return snap })

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	raw, err := fs.Load(context.Background(), KeyAuthState)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	decoded, err := DecodeAuthSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeAuthSnapshot: %v", err)
	}
	if decoded.User.ID != "u1" || !decoded.IsAdmin {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestNotifyTriggersBackgroundFlush(t *testing.T) {
	snap := AuthSnapshot{Token: "tok"}
	m, fs := newTestMirror(t, func() AuthSnapshot { return snap })

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop(ctx)

	m.Notify()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if raw, err := fs.Load(ctx, KeyAuthState); err == nil {
			decoded, derr := DecodeAuthSnapshot(raw)
			if derr == nil && decoded.Token == "tok" {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("background flush never landed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPauseSuppressesWritesUntilResume(t *testing.T) {
	snap := AuthSnapshot{Token: "tok"}
	m, fs := newTestMirror(t, func() AuthSnapshot { return snap })

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.Pause()
	m.Notify()
	time.Sleep(50 * time.Millisecond)
	if _, err := fs.Load(ctx, KeyAuthState); !errors.Is(err, ErrNotFound) {
		t.Fatalf("write landed while paused: %v", err)
	}

	m.Resume()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := fs.Load(ctx, KeyAuthState); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("catch-up flush never landed after resume")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestPurgeRemovesAllKeys(t *testing.T) {
	m, fs := newTestMirror(t, func() AuthSnapshot { return AuthSnapshot{} })
	ctx := context.Background()

	for _, key := range []string{KeyAuthState, KeyToken, KeyUser, KeyRole} {
		if err := fs.Save(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Save %s: %v", key, err)
		}
	}
	if err := m.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	for _, key := range []string{KeyAuthState, KeyToken, KeyUser, KeyRole} {
		if _, err := fs.Load(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("key %s survived purge: %v", key, err)
		}
	}
}

func TestStopFlushesFinalState(t *testing.T) {
	snap := AuthSnapshot{Token: "final"}
	m, fs := newTestMirror(t, func() AuthSnapshot { return snap })

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	raw, err := fs.Load(ctx, KeyAuthState)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	decoded, err := DecodeAuthSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeAuthSnapshot: %v", err)
	}
	if decoded.Token != "final" {
		t.Fatalf("token = %q", decoded.Token)
	}
}
