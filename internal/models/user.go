package models

import (
	"time"
)

type User struct {
	ID             string
	Email          string
	PasswordHash   string
	Name           string
	Role           string     // "user", "admin"
	FailedAttempts int        // Consecutive failed logins since last success or unlock
	LockedUntil    *time.Time // Temporary account lock expiration
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Locked reports whether the account is under a temporary lockout at the given time.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
