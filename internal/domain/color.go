package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Color is a drawable round outcome.
type Color string

const (
	// Undecided is the zero outcome of a round that has not been drawn.
	Undecided Color = ""

	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorViolet Color = "violet"
)

// Colors is the drawable set, in draw-weight order.
var Colors = []Color{ColorRed, ColorGreen, ColorViolet}

// IsValid checks if the color is part of the drawable set.
func (c Color) IsValid() bool {
	switch c {
	case ColorRed, ColorGreen, ColorViolet:
		return true
	default:
		return false
	}
}

// String returns the color name.
func (c Color) String() string {
	return string(c)
}

// PayoutTable maps each drawable color to its payout multiplier. A wager's
// potential payout is stake times the multiplier of the predicted color,
// fixed at intake.
type PayoutTable map[Color]decimal.Decimal

// DefaultPayoutTable returns the standard multipliers: common colors pay
// double, the rare color pays quadruple.
func DefaultPayoutTable() PayoutTable {
	return PayoutTable{
		ColorRed:    decimal.NewFromInt(2),
		ColorGreen:  decimal.NewFromInt(2),
		ColorViolet: decimal.NewFromInt(4),
	}
}

// Multiplier returns the payout multiplier for a color.
func (t PayoutTable) Multiplier(color Color) decimal.Decimal {
	return t[color]
}

// Potential returns the full payout for a stake on a color.
func (t PayoutTable) Potential(color Color, stake decimal.Decimal) decimal.Decimal {
	return stake.Mul(t[color])
}

// Validate checks that every drawable color has a positive multiplier.
func (t PayoutTable) Validate() error {
	for _, color := range Colors {
		multiplier, ok := t[color]
		if !ok {
			return fmt.Errorf("%w: no multiplier for %s", ErrInvalidMultiplier, color)
		}
		if multiplier.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: multiplier for %s is %s", ErrInvalidMultiplier, color, multiplier)
		}
	}

	return nil
}
