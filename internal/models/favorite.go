package models

import "time"

// Favorite is a catalog movie a user has bookmarked. Title and poster path
// are cached at save time so listings do not need a provider round trip.
type Favorite struct {
	ID         string
	UserID     string
	MovieID    int64
	Title      string
	PosterPath string
	CreatedAt  time.Time
}
