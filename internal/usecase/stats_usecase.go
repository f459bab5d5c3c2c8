package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrInconsistentLedger is returned when a user's balance disagrees with
// their transaction trail.
var ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match transaction snapshots")

// StatsUseCase handles house-wide aggregates and the ledger consistency
// check.
type StatsUseCase struct {
	statsRepo StatsRepository
	logger    zerolog.Logger
}

// NewStatsUseCase creates a new StatsUseCase.
func NewStatsUseCase(statsRepo StatsRepository, logger zerolog.Logger) *StatsUseCase {
	return &StatsUseCase{statsRepo: statsRepo, logger: logger}
}

// Summary aggregates all-time totals.
type Summary struct {
	TotalRounds int64
	TotalWagers int64
	HouseProfit decimal.Decimal
}

// GetSummary returns total rounds, total wagers and house profit.
func (uc *StatsUseCase) GetSummary(ctx context.Context) (*Summary, error) {
	rounds, wagers, err := uc.statsRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	profit, err := uc.statsRepo.HouseProfit(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalRounds: rounds,
		TotalWagers: wagers,
		HouseProfit: profit,
	}, nil
}

// CheckConsistency verifies the ledger invariants: every balance equals the
// balance_after of the user's latest transaction, and no balance is
// negative. A violation indicates a concurrency bug; it is logged at fatal
// severity and never auto-corrected.
func (uc *StatsUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	mismatched, negative, err := uc.statsRepo.CheckBalances(ctx)
	if err != nil {
		return false, err
	}

	if mismatched > 0 || negative > 0 {
		uc.logger.WithLevel(zerolog.FatalLevel).
			Int64("mismatched", mismatched).
			Int64("negative", negative).
			Msg("ledger invariant violated")

		return false, ErrInconsistentLedger
	}

	return true, nil
}
