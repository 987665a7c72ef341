package auth

import "github.com/machoraatuti/moringaconnect/internal/app/domain/user"

// Credentials authenticate an existing member.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the authenticated state returned by login and register.
type Session struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}
