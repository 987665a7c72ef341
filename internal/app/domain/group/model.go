package group

import "time"

// Group is an interest or cohort group alumni can join.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`

	MemberCount       int `json:"memberCount"`
	UpcomingEvents    int `json:"upcomingEvents"`
	RecentDiscussions int `json:"recentDiscussions"`
	JobPostings       int `json:"jobPostings"`

	IsMember  bool      `json:"isMember"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Data is the payload accepted by the API when creating or updating a group.
type Data struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Image       string `json:"image,omitempty"`
}
