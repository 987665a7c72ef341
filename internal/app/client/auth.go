package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/auth"
	"github.com/machoraatuti/moringaconnect/internal/app/domain/user"
	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/persist"
	"github.com/machoraatuti/moringaconnect/internal/app/runner"
)

// Login authenticates the member. The token/user/role triplet is written to
// durable storage inside the executor, before the fulfilled transition, so a
// crash between the two leaves a recoverable session rather than a lost one.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) error {
	if strings.TrimSpace(creds.Email) == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if creds.Password == "" {
		return &ValidationError{Field: "password", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[auth.Session]{
		Store:          "auth",
		Name:           "login",
		FailureMessage: "Login failed",
		Transitions:    c.auth,
		Exec: func(ctx context.Context) (auth.Session, error) {
			raw, err := c.gw.Post(ctx, "login", creds)
			if err != nil {
				return auth.Session{}, err
			}
			var sess auth.Session
			if err := gateway.Decode(raw, &sess); err != nil {
				return auth.Session{}, err
			}
			if err := c.persistSession(ctx, sess); err != nil {
				return auth.Session{}, fmt.Errorf("persist session: %w", err)
			}
			return sess, nil
		},
		Apply: func(seq uint64, sess auth.Session) bool {
			return c.auth.SetSession(seq, sess)
		},
	})
}

// Register creates an account and signs the member in. Self-registrations
// are never admin: the role is downgraded to member before the session is
// stored, whatever the server reported, which keeps the admin flag a pure
// function of the stored role.
func (c *Client) Register(ctx context.Context, data user.Data) error {
	if strings.TrimSpace(data.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if strings.TrimSpace(data.Email) == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if data.Password == "" {
		return &ValidationError{Field: "password", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[auth.Session]{
		Store:          "auth",
		Name:           "register",
		FailureMessage: "Registration failed",
		Transitions:    c.auth,
		Exec: func(ctx context.Context) (auth.Session, error) {
			raw, err := c.gw.Post(ctx, "users", data)
			if err != nil {
				return auth.Session{}, err
			}
			var sess auth.Session
			if err := gateway.Decode(raw, &sess); err != nil {
				return auth.Session{}, err
			}
			sess.User.Role = user.RoleMember
			if err := c.persistSession(ctx, sess); err != nil {
				return auth.Session{}, fmt.Errorf("persist session: %w", err)
			}
			return sess, nil
		},
		Apply: func(seq uint64, sess auth.Session) bool {
			return c.auth.SetSession(seq, sess)
		},
	})
}

// Logout ends the session on the server first. Only a successful server
// call clears local state and the persisted triplet; when the call fails the
// member stays signed in locally and the error is surfaced. Consumers reset
// the one-shot LogoutSuccess flag via ResetLogoutStatus.
func (c *Client) Logout(ctx context.Context) error {
	return runner.Run(ctx, c.log, runner.Op[struct{}]{
		Store:          "auth",
		Name:           "logout",
		FailureMessage: "Logout failed",
		Transitions:    c.auth,
		Exec: func(ctx context.Context) (struct{}, error) {
			if _, err := c.gw.Post(ctx, "logout", nil); err != nil {
				return struct{}{}, err
			}
			if c.storage != nil {
				if err := c.storage.Delete(ctx, persist.KeyToken, persist.KeyUser, persist.KeyRole); err != nil {
					c.log.WithError(err).Warn("clear persisted session failed")
				}
			}
			return struct{}{}, nil
		},
		Apply: func(seq uint64, _ struct{}) bool {
			return c.auth.ClearSession(seq)
		},
	})
}

// ResetLogoutStatus lowers the one-shot logout flag after the UI acted on it.
func (c *Client) ResetLogoutStatus() { c.auth.ResetLogoutStatus() }

// ClearAuthError discards the auth store error message.
func (c *Client) ClearAuthError() { c.auth.ClearError() }

func (c *Client) persistSession(ctx context.Context, sess auth.Session) error {
	if c.storage == nil {
		return nil
	}
	encodedUser, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	if err := c.storage.Save(ctx, persist.KeyToken, []byte(sess.Token)); err != nil {
		return err
	}
	if err := c.storage.Save(ctx, persist.KeyUser, encodedUser); err != nil {
		return err
	}
	return c.storage.Save(ctx, persist.KeyRole, []byte(sess.User.Role))
}
