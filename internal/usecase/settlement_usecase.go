package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/infrastructure/metrics"
)

// SettlementUseCase resolves a closed round's wagers against its outcome and
// updates the ledger.
type SettlementUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	roundRepo RoundRepository
	wagerRepo WagerRepository
	txnRepo   TransactionRepository
	outcome   OutcomeSource
	publisher EventPublisher
	idGen     IDGenerator
	clock     Clock
	payouts   domain.PayoutTable
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	roundRepo RoundRepository,
	wagerRepo WagerRepository,
	txnRepo TransactionRepository,
	outcome OutcomeSource,
	publisher EventPublisher,
	idGen IDGenerator,
	clock Clock,
	payouts domain.PayoutTable,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		roundRepo: roundRepo,
		wagerRepo: wagerRepo,
		txnRepo:   txnRepo,
		outcome:   outcome,
		publisher: publisher,
		idGen:     idGen,
		clock:     clock,
		payouts:   payouts,
		logger:    logger,
		metrics:   metrics,
	}
}

// SettleRound draws the outcome for a due round, resolves every pending
// wager and marks the round settled. Re-running on an already-settled round
// is a no-op: the outcome is assigned at most once and wagers in a terminal
// status are skipped.
func (uc *SettlementUseCase) SettleRound(ctx context.Context, roundID string) (*domain.Round, error) {
	start := uc.clock.Now()

	round, err := uc.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if !round.Due(uc.clock.Now()) {
		return nil, domain.ErrRoundNotOpen
	}

	round, err = uc.ensureOutcome(ctx, round)
	if err != nil {
		return nil, err
	}

	pending, err := uc.wagerRepo.ListPendingByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	for _, wager := range pending {
		if err := uc.settleWager(ctx, wager, round.Outcome); err != nil {
			if errors.Is(err, domain.ErrWagerNotPending) {
				// Another settlement pass already resolved it.
				continue
			}
			return nil, fmt.Errorf("settle wager %s: %w", wager.ID, err)
		}
	}

	if !round.Settled {
		now := uc.clock.Now()
		if err := uc.roundRepo.MarkSettled(ctx, round.ID, now); err != nil {
			return nil, err
		}
		round.Settled = true
		round.SettledAt = &now

		uc.publishRoundEnded(ctx, round)
	}

	uc.logger.Info().
		Str("round_id", round.ID).
		Int64("round_number", round.Number).
		Str("outcome", round.Outcome.String()).
		Int("wagers", len(pending)).
		Msg("round settled")

	if uc.metrics != nil {
		uc.metrics.RoundsSettled.Inc()
		uc.metrics.SettlementDuration.Observe(uc.clock.Now().Sub(start).Seconds())
	}

	return round, nil
}

// ensureOutcome assigns the drawn outcome unless an administrative override
// already set one. The guarded SetOutcome makes the draw happen at most once
// even when settlement races a forced result.
func (uc *SettlementUseCase) ensureOutcome(ctx context.Context, round *domain.Round) (*domain.Round, error) {
	if round.Decided() {
		return round, nil
	}

	drawn, err := uc.outcome.Draw(ctx, round)
	if err != nil {
		return nil, err
	}

	multiplier := uc.payouts.Multiplier(drawn)

	err = uc.roundRepo.SetOutcome(ctx, round.ID, drawn, multiplier, uc.clock.Now())
	if err != nil {
		if errors.Is(err, domain.ErrOutcomeAlreadySet) {
			// A forced result landed first; settle against it.
			return uc.roundRepo.GetByID(ctx, round.ID)
		}
		return nil, err
	}

	round.Outcome = drawn
	round.Multiplier = multiplier

	return round, nil
}

// settleWager resolves one wager as a single atomic step against the ledger.
func (uc *SettlementUseCase) settleWager(ctx context.Context, wager *domain.Wager, outcome domain.Color) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wager, err = uc.wagerRepo.GetPendingForUpdate(txCtx, tx, wager.ID)
	if err != nil {
		return err
	}

	res := wager.Resolve(outcome)
	now := uc.clock.Now()

	if err := uc.wagerRepo.Settle(txCtx, tx, wager.ID, res.Status, res.Profit, now); err != nil {
		return err
	}

	if res.Status == domain.WagerStatusWon {
		user, err := uc.userRepo.GetByIDForUpdate(txCtx, tx, wager.UserID)
		if err != nil {
			return err
		}

		newBalance := user.ApplyCredit(res.Credit)

		txn := &domain.Transaction{
			ID:            uc.idGen.Generate(),
			UserID:        user.ID,
			Amount:        res.Credit,
			Kind:          domain.TransactionKindWin,
			Reference:     fmt.Sprintf("won %s on %s", res.Credit, wager.Color),
			BalanceBefore: user.Balance,
			BalanceAfter:  newBalance,
			CreatedAt:     now,
		}

		if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
			return err
		}

		if err := uc.userRepo.UpdateBalance(txCtx, tx, user.ID, newBalance, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.WagersSettled.WithLabelValues(string(res.Status)).Inc()
	}

	return nil
}

// ForceOutcome assigns a round's outcome from the administrative path. It is
// only accepted while the round is unsettled; afterwards the stored outcome
// and the wager resolutions would desynchronize.
func (uc *SettlementUseCase) ForceOutcome(ctx context.Context, roundID string, outcome domain.Color) (*domain.Round, error) {
	if !outcome.IsValid() {
		return nil, domain.ErrInvalidColor
	}

	round, err := uc.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if round.Settled {
		return nil, domain.ErrRoundAlreadySettled
	}

	multiplier := uc.payouts.Multiplier(outcome)

	if err := uc.roundRepo.SetOutcome(ctx, roundID, outcome, multiplier, uc.clock.Now()); err != nil {
		return nil, err
	}

	uc.logger.Warn().
		Str("round_id", roundID).
		Str("outcome", outcome.String()).
		Msg("round outcome forced")

	round.Outcome = outcome
	round.Multiplier = multiplier

	return round, nil
}

func (uc *SettlementUseCase) publishRoundEnded(ctx context.Context, round *domain.Round) {
	event := &domain.Event{
		ID:      uc.idGen.Generate(),
		Type:    domain.EventTypeRoundEnded,
		RoundID: round.ID,
		Payload: map[string]any{
			"round_id":     round.ID,
			"round_number": round.Number,
			"outcome":      round.Outcome.String(),
			"multiplier":   round.Multiplier.String(),
		},
		CreatedAt: uc.clock.Now(),
	}

	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error().Err(err).
			Str("round_id", round.ID).
			Msg("failed to publish round ended event")
	}
}

var _ SettlementEngine = (*SettlementUseCase)(nil)
