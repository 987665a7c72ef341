// Package persist is the durable key-value layer behind the state tree.
// It snapshots session state after changes and restores it at cold start,
// so a relaunch reconstructs the session without touching the network.
package persist

import (
	"context"
	"errors"
)

// Keys written by the auth flows. Login persists all three as an explicit
// side effect of fulfillment; logout removes them on server success.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyRole  = "role"

	// KeyAuthState holds the mirrored auth snapshot.
	KeyAuthState = "auth_state"
)

// ErrNotFound reports a key with no stored value.
var ErrNotFound = errors.New("persist: key not found")

// Storage is a durable key-value store. Implementations must tolerate
// concurrent calls.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
