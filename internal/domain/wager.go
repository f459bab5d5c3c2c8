package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WagerStatus is the settlement state of a wager.
type WagerStatus string

const (
	WagerStatusPending WagerStatus = "pending"
	WagerStatusWon     WagerStatus = "won"
	WagerStatusLost    WagerStatus = "lost"
)

// Wager is a user's stake on a predicted color for a specific round. The
// potential payout is fixed at intake from the payout table; settlement
// transitions the wager exactly once from pending to won or lost.
type Wager struct {
	ID        string
	UserID    string
	RoundID   string
	Color     Color
	Stake     decimal.Decimal
	Potential decimal.Decimal
	Status    WagerStatus
	Profit    *decimal.Decimal
	CreatedAt time.Time
	SettledAt *time.Time
}

// Resolution is the outcome of settling a single wager.
type Resolution struct {
	Status WagerStatus
	Profit decimal.Decimal
	// Credit is the amount paid back to the user's balance. The stake was
	// already debited at intake, so a win credits the full potential and a
	// loss credits nothing.
	Credit decimal.Decimal
}

// Resolve computes the terminal state of the wager against a drawn outcome.
func (w *Wager) Resolve(outcome Color) Resolution {
	if w.Color == outcome {
		return Resolution{
			Status: WagerStatusWon,
			Profit: w.Potential.Sub(w.Stake),
			Credit: w.Potential,
		}
	}

	return Resolution{
		Status: WagerStatusLost,
		Profit: decimal.Zero,
		Credit: decimal.Zero,
	}
}
