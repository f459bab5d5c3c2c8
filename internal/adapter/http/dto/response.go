package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	Role      domain.Role     `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Balance:   u.Balance,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// TokenResponse represents a successful authentication.
type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// RoundResponse represents a round in API responses.
type RoundResponse struct {
	ID         string           `json:"id"`
	Number     int64            `json:"number"`
	StartAt    time.Time        `json:"start_at"`
	EndAt      time.Time        `json:"end_at"`
	Outcome    string           `json:"outcome,omitempty"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	Settled    bool             `json:"settled"`
	SettledAt  *time.Time       `json:"settled_at,omitempty"`
}

// RoundFromDomain converts a domain round to a response.
func RoundFromDomain(r *domain.Round) *RoundResponse {
	resp := &RoundResponse{
		ID:        r.ID,
		Number:    r.Number,
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		Outcome:   r.Outcome.String(),
		Settled:   r.Settled,
		SettledAt: r.SettledAt,
	}
	if r.Decided() {
		multiplier := r.Multiplier
		resp.Multiplier = &multiplier
	}

	return resp
}

// RoundsFromDomain converts domain rounds to responses.
func RoundsFromDomain(rounds []*domain.Round) []*RoundResponse {
	result := make([]*RoundResponse, len(rounds))
	for i, r := range rounds {
		result[i] = RoundFromDomain(r)
	}
	return result
}

// WagerResponse represents a wager in API responses.
type WagerResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	RoundID   string             `json:"round_id"`
	Color     string             `json:"color"`
	Stake     decimal.Decimal    `json:"stake"`
	Potential decimal.Decimal    `json:"potential"`
	Status    domain.WagerStatus `json:"status"`
	Profit    *decimal.Decimal   `json:"profit,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	SettledAt *time.Time         `json:"settled_at,omitempty"`
}

// WagerFromDomain converts a domain wager to a response.
func WagerFromDomain(w *domain.Wager) *WagerResponse {
	return &WagerResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		RoundID:   w.RoundID,
		Color:     w.Color.String(),
		Stake:     w.Stake,
		Potential: w.Potential,
		Status:    w.Status,
		Profit:    w.Profit,
		CreatedAt: w.CreatedAt,
		SettledAt: w.SettledAt,
	}
}

// WagersFromDomain converts domain wagers to responses.
func WagersFromDomain(wagers []*domain.Wager) []*WagerResponse {
	result := make([]*WagerResponse, len(wagers))
	for i, w := range wagers {
		result[i] = WagerFromDomain(w)
	}
	return result
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID            string                 `json:"id"`
	Amount        decimal.Decimal        `json:"amount"`
	Kind          domain.TransactionKind `json:"kind"`
	Reference     string                 `json:"reference,omitempty"`
	BalanceBefore decimal.Decimal        `json:"balance_before"`
	BalanceAfter  decimal.Decimal        `json:"balance_after"`
	CreatedAt     time.Time              `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		Amount:        t.Amount,
		Kind:          t.Kind,
		Reference:     t.Reference,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// StatsResponse represents house-wide aggregates.
type StatsResponse struct {
	TotalRounds int64           `json:"total_rounds"`
	TotalWagers int64           `json:"total_wagers"`
	HouseProfit decimal.Decimal `json:"house_profit"`
}

// StatsFromSummary converts a use case summary to a response.
func StatsFromSummary(s *usecase.Summary) *StatsResponse {
	return &StatsResponse{
		TotalRounds: s.TotalRounds,
		TotalWagers: s.TotalWagers,
		HouseProfit: s.HouseProfit,
	}
}

// ConsistencyResponse reports the ledger consistency check result.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
