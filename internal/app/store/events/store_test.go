package events

import (
	"testing"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/event"
)

func TestSetStatusPatchesEventAndPrependsNotification(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []event.Event{
		{ID: "e1", Title: "Demo Day", Status: event.StatusUpcoming},
		{ID: "e2", Title: "Hackathon", Status: event.StatusUpcoming},
	})

	s.SetStatus(s.Pending(),
		event.Event{ID: "e1", Title: "Demo Day", Status: event.StatusCancelled},
		event.Notification{ID: "n1", Message: "cancelled", Type: event.StatusCancelled},
	)
	s.SetStatus(s.Pending(),
		event.Event{ID: "e2", Title: "Hackathon", Status: event.StatusCompleted},
		event.Notification{ID: "n2", Message: "completed", Type: event.StatusCompleted},
	)

	st := s.Snapshot()
	if st.Events[0].Status != event.StatusCancelled {
		t.Fatalf("e1 status = %q", st.Events[0].Status)
	}
	// Newest announcement first.
	if st.Notifications[0].ID != "n2" || st.Notifications[1].ID != "n1" {
		t.Fatalf("notification order = %v", []string{st.Notifications[0].ID, st.Notifications[1].ID})
	}
}

func TestSetStatusUnknownIDStillRecordsNotification(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []event.Event{{ID: "e1"}})

	s.SetStatus(s.Pending(),
		event.Event{ID: "ghost", Status: event.StatusCompleted},
		event.Notification{ID: "n1"},
	)

	st := s.Snapshot()
	if len(st.Events) != 1 || st.Events[0].ID != "e1" {
		t.Fatalf("events mutated: %+v", st.Events)
	}
	if len(st.Notifications) != 1 {
		t.Fatal("notification missing")
	}
}

func TestRemoveDeletesEventAndAnnounces(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []event.Event{{ID: "e1"}, {ID: "e2"}})

	s.Remove(s.Pending(), "e1", event.Notification{ID: "n1", Type: "deleted"})

	st := s.Snapshot()
	if len(st.Events) != 1 || st.Events[0].ID != "e2" {
		t.Fatalf("events = %+v", st.Events)
	}
	if len(st.Notifications) != 1 || st.Notifications[0].Type != "deleted" {
		t.Fatalf("notifications = %+v", st.Notifications)
	}
}

func TestDismissNotification(t *testing.T) {
	s := New()
	s.SetStatus(s.Pending(), event.Event{ID: "e1"}, event.Notification{ID: "n1"})
	s.SetStatus(s.Pending(), event.Event{ID: "e1"}, event.Notification{ID: "n2"})

	s.DismissNotification("n1")
	st := s.Snapshot()
	if len(st.Notifications) != 1 || st.Notifications[0].ID != "n2" {
		t.Fatalf("notifications = %+v", st.Notifications)
	}

	// Unknown ids are a no-op.
	s.DismissNotification("ghost")
	if len(s.Snapshot().Notifications) != 1 {
		t.Fatal("dismissing an unknown id changed the feed")
	}

	s.DismissAllNotifications()
	if len(s.Snapshot().Notifications) != 0 {
		t.Fatal("feed not cleared")
	}
}

func TestDismissIsNotASettlement(t *testing.T) {
	s := New()
	s.Pending()
	s.DismissAllNotifications()
	if !s.Snapshot().IsLoading {
		t.Fatal("dismiss must not settle the in-flight operation")
	}
}
