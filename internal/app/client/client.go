// Package client implements the asynchronous operations screens dispatch:
// each one runs pending -> gateway call -> fulfilled/rejected against its
// owning store. Client-side validation failures never reach the gateway or
// the store.
package client

import (
	"fmt"

	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/persist"
	authstore "github.com/machoraatuti/moringaconnect/internal/app/store/auth"
	eventstore "github.com/machoraatuti/moringaconnect/internal/app/store/events"
	groupstore "github.com/machoraatuti/moringaconnect/internal/app/store/groups"
	poststore "github.com/machoraatuti/moringaconnect/internal/app/store/posts"
	userstore "github.com/machoraatuti/moringaconnect/internal/app/store/users"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

// ValidationError reports input rejected before dispatch. The operation does
// not run and no store transitions.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Client binds the gateway to the entity stores.
type Client struct {
	gw      *gateway.Client
	users   *userstore.Store
	groups  *groupstore.Store
	posts   *poststore.Store
	events  *eventstore.Store
	auth    *authstore.Store
	storage persist.Storage
	log     *logger.Logger
}

// Config carries the collaborators a Client needs.
type Config struct {
	Gateway *gateway.Client
	Users   *userstore.Store
	Groups  *groupstore.Store
	Posts   *poststore.Store
	Events  *eventstore.Store
	Auth    *authstore.Store

	// Storage receives the token/user/role triplet the auth flows persist
	// explicitly on login and remove on logout.
	Storage persist.Storage

	Logger *logger.Logger
}

// New constructs a Client.
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("client")
	}
	return &Client{
		gw:      cfg.Gateway,
		users:   cfg.Users,
		groups:  cfg.Groups,
		posts:   cfg.Posts,
		events:  cfg.Events,
		auth:    cfg.Auth,
		storage: cfg.Storage,
		log:     log,
	}
}
