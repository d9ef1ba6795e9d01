package models

import (
	"encoding/json"
	"time"
)

// PooledVideo is a stock-video provider asset persisted in the local pool.
// The payload is the verbatim provider response for the asset so the watch
// endpoint can replay it without another provider call.
type PooledVideo struct {
	ID         string
	ExternalID int64
	Payload    json.RawMessage
	CreatedAt  time.Time
}
