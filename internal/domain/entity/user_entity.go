package entity

import (
	"time"
)

// User is an authentication principal.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID        string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
}
