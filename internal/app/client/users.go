package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/user"
	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/runner"
)

// FetchUsers replaces the directory with the server's current listing.
func (c *Client) FetchUsers(ctx context.Context) error {
	return runner.Run(ctx, c.log, runner.Op[[]user.User]{
		Store:          "users",
		Name:           "fetchUsers",
		FailureMessage: "Failed to load members",
		Transitions:    c.users,
		Exec: func(ctx context.Context) ([]user.User, error) {
			raw, err := c.gw.Get(ctx, "users")
			if err != nil {
				return nil, err
			}
			var items []user.User
			if err := gateway.Decode(raw, &items); err != nil {
				return nil, err
			}
			return items, nil
		},
		Apply: func(seq uint64, items []user.User) bool {
			return c.users.ReplaceAll(seq, items)
		},
	})
}

type presenceUpdate struct {
	UserID   string    `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	lastSeen time.Time // not on the wire; stamped locally at settlement
}

// UpdateUserStatus patches one member's presence flag.
func (c *Client) UpdateUserStatus(ctx context.Context, userID string, online bool) error {
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "userId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[presenceUpdate]{
		Store:          "users",
		Name:           "updateUserStatus",
		FailureMessage: "Failed to update member status",
		Transitions:    c.users,
		Exec: func(ctx context.Context) (presenceUpdate, error) {
			raw, err := c.gw.Patch(ctx, fmt.Sprintf("users/%s/status", userID), map[string]bool{"isOnline": online})
			if err != nil {
				return presenceUpdate{}, err
			}
			update := presenceUpdate{UserID: userID, IsOnline: online}
			if raw != nil {
				if err := gateway.Decode(raw, &update); err != nil {
					return presenceUpdate{}, err
				}
			}
			update.lastSeen = time.Now().UTC()
			return update, nil
		},
		Apply: func(seq uint64, p presenceUpdate) bool {
			return c.users.SetPresence(seq, p.UserID, p.IsOnline, p.lastSeen)
		},
	})
}

// CreateUser registers a member through the admin dashboard.
func (c *Client) CreateUser(ctx context.Context, data user.Data) error {
	if strings.TrimSpace(data.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if strings.TrimSpace(data.Email) == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[user.User]{
		Store:          "users",
		Name:           "createUser",
		FailureMessage: "Failed to create member",
		Transitions:    c.users,
		Exec: func(ctx context.Context) (user.User, error) {
			raw, err := c.gw.Post(ctx, "users", data)
			if err != nil {
				return user.User{}, err
			}
			var created user.User
			if err := gateway.Decode(raw, &created); err != nil {
				return user.User{}, err
			}
			return created, nil
		},
		Apply: func(seq uint64, created user.User) bool {
			return c.users.Add(seq, created)
		},
	})
}

// DeleteUser removes a member. Deleting an id the store no longer holds is a
// no-op locally.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "userId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[string]{
		Store:          "users",
		Name:           "deleteUser",
		FailureMessage: "Failed to delete member",
		Transitions:    c.users,
		Exec: func(ctx context.Context) (string, error) {
			if _, err := c.gw.Delete(ctx, "users/"+userID); err != nil {
				return "", err
			}
			return userID, nil
		},
		Apply: func(seq uint64, id string) bool {
			return c.users.Remove(seq, id)
		},
	})
}

// ClearUsersError discards the users store error message.
func (c *Client) ClearUsersError() { c.users.ClearError() }
