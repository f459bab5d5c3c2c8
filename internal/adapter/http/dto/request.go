package dto

import (
	"github.com/shopspring/decimal"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AmountRequest represents a deposit or withdrawal request.
type AmountRequest struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

// ParseAmount parses the amount field.
func (r *AmountRequest) ParseAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Amount)
}

// PlaceWagerRequest represents a wager placement request. The stake travels
// as a string so clients never round it through a float.
type PlaceWagerRequest struct {
	RoundID string `json:"round_id"`
	Color   string `json:"color"`
	Stake   string `json:"stake"`
}

// ToUseCaseInput converts the request to use case input.
func (r *PlaceWagerRequest) ToUseCaseInput(userID string) (usecase.PlaceWagerInput, error) {
	stake, err := decimal.NewFromString(r.Stake)
	if err != nil {
		return usecase.PlaceWagerInput{}, err
	}

	return usecase.PlaceWagerInput{
		UserID:  userID,
		RoundID: r.RoundID,
		Color:   domain.Color(r.Color),
		Stake:   stake,
	}, nil
}

// ForceOutcomeRequest represents an administrative outcome override.
type ForceOutcomeRequest struct {
	Outcome string `json:"outcome"`
}
