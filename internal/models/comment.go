package models

import "time"

type Comment struct {
	ID         string
	UserID     string
	AuthorName string // Denormalized at write time for listings
	MovieID    int64
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
