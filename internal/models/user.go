package models

import "time"

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionUser is the identity attached to an authenticated request.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SessionUser returns the public identity of u.
func (u User) SessionUser() SessionUser {
	return SessionUser{ID: u.ID, Username: u.Username}
}
