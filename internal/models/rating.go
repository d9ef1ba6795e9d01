package models

import "time"

// Rating is a single user's star rating for a catalog movie. One row per
// (user, movie); writes are upserts.
type Rating struct {
	ID        string
	UserID    string
	MovieID   int64
	Stars     int // 1..5
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingSummary aggregates ratings for one movie.
type RatingSummary struct {
	MovieID int64
	Average float64
	Count   int
}
