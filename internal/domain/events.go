package domain

import "time"

// Event types
const (
	EventTypeRoundStarted = "round.started"
	EventTypeRoundEnded   = "round.ended"
)

// Event is a round-lifecycle notification for external subscribers.
// Delivery is at-most-once best-effort; subscribers reconcile by polling
// the current open round.
type Event struct {
	ID        string
	Type      string
	RoundID   string
	Payload   map[string]any
	CreatedAt time.Time
}

// RoundStartedEvent payload
type RoundStartedEvent struct {
	RoundID     string    `json:"round_id"`
	RoundNumber int64     `json:"round_number"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}

// RoundEndedEvent payload
type RoundEndedEvent struct {
	RoundID     string `json:"round_id"`
	RoundNumber int64  `json:"round_number"`
	Outcome     string `json:"outcome"`
	Multiplier  string `json:"multiplier"`
}
