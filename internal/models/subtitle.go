package models

import "time"

// Subtitle is a user-contributed subtitle track for a catalog movie.
type Subtitle struct {
	ID        string
	UserID    string
	MovieID   int64
	Language  string // BCP 47 tag, e.g. "en", "pt-BR"
	Label     string
	Content   string // WebVTT text
	CreatedAt time.Time
}
