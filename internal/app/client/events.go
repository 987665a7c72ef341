package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/event"
	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/runner"
)

// FetchEvents replaces the calendar with the server's view.
func (c *Client) FetchEvents(ctx context.Context) error {
	return runner.Run(ctx, c.log, runner.Op[[]event.Event]{
		Store:          "events",
		Name:           "fetchEvents",
		FailureMessage: "Failed to load events",
		Transitions:    c.events,
		Exec: func(ctx context.Context) ([]event.Event, error) {
			raw, err := c.gw.Get(ctx, "events")
			if err != nil {
				return nil, err
			}
			var items []event.Event
			if err := gateway.Decode(raw, &items); err != nil {
				return nil, err
			}
			return items, nil
		},
		Apply: func(seq uint64, items []event.Event) bool {
			return c.events.ReplaceAll(seq, items)
		},
	})
}

// CreateEvent schedules a new event.
func (c *Client) CreateEvent(ctx context.Context, data event.Data) error {
	if strings.TrimSpace(data.Title) == "" {
		return &ValidationError{Field: "title", Message: "required"}
	}
	if strings.TrimSpace(data.Date) == "" {
		return &ValidationError{Field: "date", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[event.Event]{
		Store:          "events",
		Name:           "createEvent",
		FailureMessage: "Failed to create event",
		Transitions:    c.events,
		Exec: func(ctx context.Context) (event.Event, error) {
			raw, err := c.gw.Post(ctx, "events", data)
			if err != nil {
				return event.Event{}, err
			}
			var created event.Event
			if err := gateway.Decode(raw, &created); err != nil {
				return event.Event{}, err
			}
			return created, nil
		},
		Apply: func(seq uint64, created event.Event) bool {
			return c.events.Add(seq, created)
		},
	})
}

type statusUpdate struct {
	updated      event.Event
	notification event.Notification
}

// UpdateEventStatus moves an event to a new status and raises an
// announcement for subscribed screens.
func (c *Client) UpdateEventStatus(ctx context.Context, eventID, status string) error {
	if strings.TrimSpace(eventID) == "" {
		return &ValidationError{Field: "eventId", Message: "required"}
	}
	if !event.ValidStatus(status) {
		return &ValidationError{Field: "status", Message: "unknown event status " + status}
	}
	return runner.Run(ctx, c.log, runner.Op[statusUpdate]{
		Store:          "events",
		Name:           "updateEventStatus",
		FailureMessage: "Failed to update event status",
		Transitions:    c.events,
		Exec: func(ctx context.Context) (statusUpdate, error) {
			raw, err := c.gw.Patch(ctx, "events/"+eventID, map[string]string{"status": status})
			if err != nil {
				return statusUpdate{}, err
			}
			var updated event.Event
			if err := gateway.Decode(raw, &updated); err != nil {
				return statusUpdate{}, err
			}
			return statusUpdate{
				updated: updated,
				notification: event.Notification{
					ID:        uuid.NewString(),
					Message:   fmt.Sprintf("Event %q is now %s", updated.Title, updated.Status),
					Type:      updated.Status,
					Timestamp: time.Now().UTC(),
				},
			}, nil
		},
		Apply: func(seq uint64, u statusUpdate) bool {
			return c.events.SetStatus(seq, u.updated, u.notification)
		},
	})
}

type eventRemoval struct {
	eventID      string
	notification event.Notification
}

// DeleteEvent removes an event and raises a removal announcement.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return &ValidationError{Field: "eventId", Message: "required"}
	}

	// Capture the title before the entity disappears from the store.
	title := eventID
	for _, e := range c.events.Snapshot().Events {
		if e.ID == eventID {
			title = e.Title
			break
		}
	}

	return runner.Run(ctx, c.log, runner.Op[eventRemoval]{
		Store:          "events",
		Name:           "deleteEvent",
		FailureMessage: "Failed to delete event",
		Transitions:    c.events,
		Exec: func(ctx context.Context) (eventRemoval, error) {
			if _, err := c.gw.Delete(ctx, "events/"+eventID); err != nil {
				return eventRemoval{}, err
			}
			return eventRemoval{
				eventID: eventID,
				notification: event.Notification{
					ID:        uuid.NewString(),
					Message:   fmt.Sprintf("Event %q was removed", title),
					Type:      "deleted",
					Timestamp: time.Now().UTC(),
				},
			}, nil
		},
		Apply: func(seq uint64, r eventRemoval) bool {
			return c.events.Remove(seq, r.eventID, r.notification)
		},
	})
}

// DismissNotification drops one announcement from the feed.
func (c *Client) DismissNotification(id string) { c.events.DismissNotification(id) }

// DismissAllNotifications clears the announcement feed.
func (c *Client) DismissAllNotifications() { c.events.DismissAllNotifications() }

// ClearEventsError discards the events store error message.
func (c *Client) ClearEventsError() { c.events.ClearError() }
