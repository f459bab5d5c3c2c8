package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrPasswordTooWeak = errors.New("password does not meet requirements")
	ErrStakeTooSmall   = errors.New("stake below minimum allowed")
	ErrStakeTooLarge   = errors.New("stake exceeds maximum allowed")
)

// Validation constants
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxStakeAmount    = "1000000"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername validates a username.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidUsername, MinUsernameLength)
	}

	if len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrInvalidUsername, MaxUsernameLength)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("%w: only letters, digits and underscores allowed", ErrInvalidUsername)
	}

	return nil
}

// ValidatePassword validates password strength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	return nil
}

// ValidateStake validates a wager stake against the configured minimum.
func ValidateStake(stake, minStake decimal.Decimal) error {
	if stake.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if stake.LessThan(minStake) {
		return fmt.Errorf("%w: minimum stake is %s", ErrStakeTooSmall, minStake)
	}

	maxStake, _ := decimal.NewFromString(MaxStakeAmount)
	if stake.GreaterThan(maxStake) {
		return fmt.Errorf("%w: maximum stake is %s", ErrStakeTooLarge, MaxStakeAmount)
	}

	return nil
}

// ValidateAmount validates a deposit or withdrawal amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 200
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
