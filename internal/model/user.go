// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username and email are each globally unique. The store's UNIQUE
// constraints are the final backstop; the duplicate pre-check at signup
// exists only to produce a friendlier, field-scoped error.
//
// PasswordHash carries `json:"-"` so it can never appear in a response
// body, regardless of which handler serializes the struct.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Username     string    `json:"username"   db:"username"`
	Email        string    `json:"email"      db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name"  db:"last_name"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"  db:"updated_at"`
}

// Profile is the public projection of a User returned to clients.
//
// Email is included only when the viewer is looking at their own account;
// omitempty keeps it out of the JSON for everyone else.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
}

// PublicProfile returns the projection shown to other users: no email.
func (u *User) PublicProfile() Profile {
	return Profile{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

// OwnProfile returns the projection shown to the account owner.
func (u *User) OwnProfile() Profile {
	p := u.PublicProfile()
	p.Email = u.Email
	return p
}
