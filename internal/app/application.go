// Package app composes the data layer: the five entity stores, the HTTP
// gateway, the operation client, the persistence mirror, and the background
// services that keep them running.
package app

import (
	"context"
	"fmt"

	"github.com/machoraatuti/moringaconnect/internal/app/client"
	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/persist"
	authstore "github.com/machoraatuti/moringaconnect/internal/app/store/auth"
	eventstore "github.com/machoraatuti/moringaconnect/internal/app/store/events"
	groupstore "github.com/machoraatuti/moringaconnect/internal/app/store/groups"
	poststore "github.com/machoraatuti/moringaconnect/internal/app/store/posts"
	userstore "github.com/machoraatuti/moringaconnect/internal/app/store/users"
	"github.com/machoraatuti/moringaconnect/internal/app/system"
	"github.com/machoraatuti/moringaconnect/internal/config"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

// Application is the assembled data layer. Stores are exposed read-only
// through snapshots; all mutation goes through the Client's operations.
type Application struct {
	Client *client.Client

	Users  *userstore.Store
	Groups *groupstore.Store
	Posts  *poststore.Store
	Events *eventstore.Store
	Auth   *authstore.Store

	Mirror *persist.Mirror

	cfg     config.Config
	log     *logger.Logger
	manager *system.Manager
	closer  func() error
}

// New builds the application from configuration. The prior session is
// rehydrated into the auth store before New returns, so callers observe the
// restored session from the first snapshot on.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	users := userstore.New()
	groups := groupstore.New()
	posts := poststore.New()
	events := eventstore.New()
	auth := authstore.New()

	if cfg.Store.RequestFencing {
		users.EnableFencing()
		groups.EnableFencing()
		posts.EnableFencing()
		events.EnableFencing()
		auth.EnableFencing()
	}

	storage, closer, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(gateway.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.RatePerSecond,
		Token:         auth.Token,
		Logger:        log.WithField("component", "gateway"),
	})
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, fmt.Errorf("build gateway: %w", err)
	}

	cl := client.New(client.Config{
		Gateway: gw,
		Users:   users,
		Groups:  groups,
		Posts:   posts,
		Events:  events,
		Auth:    auth,
		Storage: storage,
		Logger:  log.WithField("component", "client"),
	})

	mirror := persist.NewMirror(storage, func() persist.AuthSnapshot {
		st := auth.Snapshot()
		return persist.AuthSnapshot{
			User:            st.User,
			Token:           st.Token,
			IsAuthenticated: st.IsAuthenticated,
			IsAdmin:         st.IsAdmin,
		}
	}, log.WithField("component", "persist"))

	mirror.OnRehydrate(func(snap persist.AuthSnapshot) {
		auth.Restore(snap.User, snap.Token)
	})

	// Every store change schedules an asynchronous mirror write. The auth
	// store is the persisted subset, but notifying on all of them keeps the
	// wiring uniform and the writes coalesce anyway.
	for _, register := range []func(func()){
		users.OnChange, groups.OnChange, posts.OnChange, events.OnChange, auth.OnChange,
	} {
		register(mirror.Notify)
	}

	if err := mirror.Rehydrate(ctx); err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, fmt.Errorf("rehydrate session: %w", err)
	}

	manager := system.NewManager()
	if err := manager.Register(mirror); err != nil {
		return nil, err
	}
	refresher := client.NewRefresher(cl, cfg.RefreshSchedule, log.WithField("component", "refresher"))
	if err := manager.Register(refresher); err != nil {
		return nil, err
	}

	return &Application{
		Client:  cl,
		Users:   users,
		Groups:  groups,
		Posts:   posts,
		Events:  events,
		Auth:    auth,
		Mirror:  mirror,
		cfg:     cfg,
		log:     log,
		manager: manager,
		closer:  closer,
	}, nil
}

// Start launches the background services.
func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	a.log.WithField("backend", a.cfg.Storage.Backend).Info("data layer started")
	return nil
}

// Stop halts background services, flushes the mirror, and releases the
// storage backend.
func (a *Application) Stop(ctx context.Context) error {
	err := a.manager.Stop(ctx)
	if a.closer != nil {
		if cerr := a.closer(); cerr != nil && err == nil {
			err = cerr
		}
	}
	a.log.Info("data layer stopped")
	return err
}

// newStorage selects the durable backend. The returned closer is nil for
// backends with nothing to release.
func newStorage(ctx context.Context, cfg config.Config) (persist.Storage, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		rs, err := persist.NewRedisStorage(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		return rs, rs.Close, nil
	case config.BackendFile:
		fs, err := persist.NewFileStorage(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		return fs, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
