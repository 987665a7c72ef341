package event

import "time"

// Event status values.
const (
	StatusUpcoming    = "upcoming"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// ValidStatus reports whether s is one of the recognised event states.
func ValidStatus(s string) bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// Event is a scheduled alumni gathering.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Date                 string `json:"date"`
	StartTime            string `json:"startTime,omitempty"`
	EndTime              string `json:"endTime,omitempty"`
	RegistrationDeadline string `json:"registrationDeadline,omitempty"`

	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
	Status   string `json:"status"`

	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Image        string `json:"image,omitempty"`
}

// Notification is an announcement owned by the events store. Append-only,
// dismissable individually or in bulk.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Data is the payload accepted by the API when creating or updating an event.
type Data struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Date                 string `json:"date,omitempty"`
	StartTime            string `json:"startTime,omitempty"`
	EndTime              string `json:"endTime,omitempty"`
	RegistrationDeadline string `json:"registrationDeadline,omitempty"`

	Location string `json:"location,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
	Status   string `json:"status,omitempty"`

	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Image        string `json:"image,omitempty"`
}
