package core

import "time"

// User is a registered member of the group. PasswordHash is a bcrypt hash
// and never leaves the auth layer.
type User struct {
	ID           string
	Username     string
	DisplayName  string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the identity recorded on transactions this user touches.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.DisplayName}
}
