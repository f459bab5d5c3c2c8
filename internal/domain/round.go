package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Round is one timed betting cycle. It is created undecided with a future
// end time, receives an outcome exactly once at close, and is marked settled
// after every wager referencing it reached a terminal status.
type Round struct {
	ID         string
	Number     int64
	StartAt    time.Time
	EndAt      time.Time
	Outcome    Color
	Multiplier decimal.Decimal
	Settled    bool
	SettledAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOpen reports whether the round accepts wagers at the given instant.
// A round is open while now is within [StartAt, EndAt) and no outcome
// has been assigned.
func (r *Round) IsOpen(now time.Time) bool {
	return r.Outcome == Undecided &&
		!now.Before(r.StartAt) &&
		now.Before(r.EndAt)
}

// Due reports whether the round's end time has passed.
func (r *Round) Due(now time.Time) bool {
	return !now.Before(r.EndAt)
}

// Decided reports whether the outcome has been assigned.
func (r *Round) Decided() bool {
	return r.Outcome != Undecided
}
