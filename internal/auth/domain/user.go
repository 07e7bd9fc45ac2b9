package domain

import (
	"slices"
	"time"
)

// User is a registered identity. Login is the unique, human-facing key and
// becomes the token subject.
type User struct {
	ID           string
	Login        string
	PasswordHash string // argon2id PHC string
	FirstName    string
	LastName     string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile returns a copy of u with the password hash cleared and its own
// roles slice, safe to hand to callers.
func (u User) Profile() User {
	u.PasswordHash = ""
	u.Roles = slices.Clone(u.Roles)
	return u
}

// Registration is a candidate identity submitted for sign-up. Password is
// plaintext and never stored as such.
type Registration struct {
	Login     string
	Password  string
	FirstName string
	LastName  string
	Roles     []Role
}
