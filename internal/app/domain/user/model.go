package user

import "time"

// Role values assigned by the directory service at authentication time.
// A role is set once per session and is never mutated locally.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a member of the alumni directory.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen,omitempty"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Data is the payload accepted by the directory when creating a user.
type Data struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}
