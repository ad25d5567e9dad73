package domain

import "time"

// User is a registered storefront account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is what the identity provider reports about the caller.
// The zero value is an anonymous caller.
type Identity struct {
	UserID    string
	IsAdmin   bool
	SessionID string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}
