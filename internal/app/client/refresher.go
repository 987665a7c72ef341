package client

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/machoraatuti/moringaconnect/internal/app/system"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

var _ system.Service = (*Refresher)(nil)

// Refresher refetches the entity listings on a cron schedule, standing in
// for the refetch-on-screen-focus behavior of an interactive client. An
// empty schedule disables it.
type Refresher struct {
	client   *Client
	schedule string
	log      *logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewRefresher creates a refresher with a cron spec such as "@every 5m".
func NewRefresher(client *Client, schedule string, log *logger.Logger) *Refresher {
	if log == nil {
		log = logger.NewDefault("refresher")
	}
	return &Refresher{
		client:   client,
		schedule: schedule,
		log:      log,
	}
}

func (r *Refresher) Name() string { return "listing-refresher" }

// Start schedules the refresh job. With no schedule configured this is a
// no-op so the manager can register it unconditionally.
func (r *Refresher) Start(ctx context.Context) error {
	if r.schedule == "" {
		r.log.Info("no refresh schedule configured; refresher idle")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.refresh() }); err != nil {
		return err
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	c.Start()
	r.log.WithField("schedule", r.schedule).Info("listing refresher started")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.log.Info("listing refresher stopped")
	return nil
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, fetch := range map[string]func(context.Context) error{
		"users":  r.client.FetchUsers,
		"groups": r.client.FetchGroups,
		"posts":  r.client.FetchPosts,
		"events": r.client.FetchEvents,
	} {
		if err := fetch(ctx); err != nil {
			r.log.WithError(err).WithField("listing", name).Warn("scheduled refresh failed")
		}
	}
}
