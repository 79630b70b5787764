package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash and must never leave the backend;
// handlers render users through the public view only.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Bio       string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
