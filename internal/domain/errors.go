package domain

import "errors"

var (
	// User errors
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Round errors
	ErrRoundNotFound       = errors.New("round not found")
	ErrRoundNotOpen        = errors.New("round is not open for betting")
	ErrRoundOverlap        = errors.New("another round is already open")
	ErrRoundAlreadySettled = errors.New("round is already settled")
	ErrOutcomeAlreadySet   = errors.New("round outcome is already set")

	// Wager errors
	ErrWagerNotFound     = errors.New("wager not found")
	ErrInvalidColor      = errors.New("color is not part of the drawable set")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidMultiplier = errors.New("payout multiplier must be positive")
	ErrWagerNotPending   = errors.New("wager is not pending")

	// ErrNegativeBalance signals a broken ledger invariant. It is never
	// auto-corrected; the operation that detected it must abort.
	ErrNegativeBalance = errors.New("ledger invariant violated: negative balance")
)
