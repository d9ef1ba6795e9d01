package models

import "time"

// PasswordResetToken tracks an outstanding password reset request.
// Only the SHA-256 hash of the emailed token is stored.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
