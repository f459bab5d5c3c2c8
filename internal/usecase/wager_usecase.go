package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/infrastructure/metrics"
)

// WagerUseCase validates and records wagers against the currently open round.
type WagerUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	roundRepo RoundRepository
	wagerRepo WagerRepository
	txnRepo   TransactionRepository
	idGen     IDGenerator
	clock     Clock
	retrier   Retrier
	payouts   domain.PayoutTable
	minStake  decimal.Decimal
	metrics   *metrics.Metrics
}

// NewWagerUseCase creates a new WagerUseCase.
func NewWagerUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	roundRepo RoundRepository,
	wagerRepo WagerRepository,
	txnRepo TransactionRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	payouts domain.PayoutTable,
	minStake decimal.Decimal,
	metrics *metrics.Metrics,
) *WagerUseCase {
	return &WagerUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		roundRepo: roundRepo,
		wagerRepo: wagerRepo,
		txnRepo:   txnRepo,
		idGen:     idGen,
		clock:     clock,
		retrier:   retrier,
		payouts:   payouts,
		minStake:  minStake,
		metrics:   metrics,
	}
}

// PlaceWagerInput represents input for placing a wager.
type PlaceWagerInput struct {
	UserID  string
	RoundID string
	Color   domain.Color
	Stake   decimal.Decimal
}

// PlaceWager debits the stake, records the bet transaction and creates the
// pending wager as one atomic unit. The round-open check is re-evaluated
// inside the same transaction that debits the balance, so a round closing
// mid-request rejects the bet instead of queueing it.
func (uc *WagerUseCase) PlaceWager(ctx context.Context, input PlaceWagerInput) (*domain.Wager, error) {
	if !input.Color.IsValid() {
		return nil, domain.ErrInvalidColor
	}

	if err := domain.ValidateStake(input.Stake, uc.minStake); err != nil {
		return nil, err
	}

	round, err := uc.roundRepo.GetByID(ctx, input.RoundID)
	if err != nil {
		return nil, err
	}

	if !round.IsOpen(uc.clock.Now()) {
		return nil, domain.ErrRoundNotOpen
	}

	var wager *domain.Wager
	place := func() error {
		var err error
		wager, err = uc.placeWagerTx(ctx, input)
		return err
	}

	// Intake can deadlock against a settlement pass locking the same user
	// row; the retrier re-runs the whole transaction.
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, place)
	} else {
		err = place()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WagersPlaced.Inc()
		stake, _ := input.Stake.Float64()
		uc.metrics.WagerStake.Observe(stake)
	}

	return wager, nil
}

// placeWagerTx is the transactional core of PlaceWager.
func (uc *WagerUseCase) placeWagerTx(ctx context.Context, input PlaceWagerInput) (*domain.Wager, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Serialize on the user's balance first, then re-check openness at the
	// moment of the debit.
	user, err := uc.userRepo.GetByIDForUpdate(txCtx, tx, input.UserID)
	if err != nil {
		return nil, err
	}

	round, err := uc.roundRepo.GetByIDTx(txCtx, tx, input.RoundID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if !round.IsOpen(now) {
		return nil, domain.ErrRoundNotOpen
	}

	if err := user.ValidateDebit(input.Stake); err != nil {
		return nil, err
	}

	newBalance := user.ApplyDebit(input.Stake)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNegativeBalance, user.ID)
	}

	wager := &domain.Wager{
		ID:        uc.idGen.Generate(),
		UserID:    user.ID,
		RoundID:   round.ID,
		Color:     input.Color,
		Stake:     input.Stake,
		Potential: uc.payouts.Potential(input.Color, input.Stake),
		Status:    domain.WagerStatusPending,
		CreatedAt: now,
	}

	if err := uc.wagerRepo.Create(txCtx, tx, wager); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		UserID:        user.ID,
		Amount:        input.Stake.Neg(),
		Kind:          domain.TransactionKindBet,
		Reference:     fmt.Sprintf("bet on %s, round #%d", input.Color, round.Number),
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
		CreatedAt:     now,
	}

	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.userRepo.UpdateBalance(txCtx, tx, user.ID, newBalance, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return wager, nil
}

// GetWager retrieves a wager by ID.
func (uc *WagerUseCase) GetWager(ctx context.Context, id string) (*domain.Wager, error) {
	return uc.wagerRepo.GetByID(ctx, id)
}

// ListWagersByUserInput represents input for listing a user's wagers.
type ListWagersByUserInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListWagersByUser lists a user's wagers, newest first.
func (uc *WagerUseCase) ListWagersByUser(ctx context.Context, input ListWagersByUserInput) ([]*domain.Wager, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	return uc.wagerRepo.ListByUser(ctx, input.UserID, limit, offset)
}
