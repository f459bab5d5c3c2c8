package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// User represents a player or administrator holding a balance.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	Balance        decimal.Decimal
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if the balance covers a debit of amount.
func (u *User) ValidateDebit(amount decimal.Decimal) error {
	if u.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (u *User) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return u.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (u *User) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return u.Balance.Add(amount)
}

// Role represents a user's access level.
type Role string

const (
	// RolePlayer can place wagers and manage their own balance.
	RolePlayer Role = "player"

	// RoleAdmin can additionally force round outcomes and read stats.
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RolePlayer: true,
	RoleAdmin:  true,
}

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanForceOutcome checks if the role may assign a round outcome manually.
func (r Role) CanForceOutcome() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type userContextKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}
