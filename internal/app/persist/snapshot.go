package persist

import (
	"encoding/json"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/user"
)

// AuthSnapshot is the persisted subset of the state tree: enough to
// reconstruct the session on cold start. IsAdmin is stored redundantly but
// re-derived from the user's role on restore, so a tampered snapshot cannot
// grant admin.
type AuthSnapshot struct {
	User            *user.User `json:"user"`
	Token           string     `json:"token"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	IsAdmin         bool       `json:"isAdmin"`
}

// Encode serializes the snapshot.
func (s AuthSnapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeAuthSnapshot parses a stored snapshot. Corrupt payloads return an
// error so callers can fall back to the default signed-out state.
func DecodeAuthSnapshot(raw []byte) (AuthSnapshot, error) {
	var s AuthSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return AuthSnapshot{}, err
	}
	if s.User != nil {
		s.IsAdmin = s.User.IsAdmin()
	} else {
		s.IsAdmin = false
		s.IsAuthenticated = false
	}
	return s, nil
}
