package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eluss/chromabet/internal/domain"
)

// UserRepository defines data access for users and their balances.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.User, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// RoundRepository defines data access for rounds.
type RoundRepository interface {
	// CreateOpen persists a new undecided round. It fails with
	// domain.ErrRoundOverlap when another unsettled round already exists;
	// the check and the insert are a single atomic operation.
	CreateOpen(ctx context.Context, round *domain.Round) error
	GetByID(ctx context.Context, id string) (*domain.Round, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Round, error)
	// GetCurrent returns the single unsettled round. A round stays current
	// until settlement completes, even once its outcome is decided.
	GetCurrent(ctx context.Context) (*domain.Round, error)
	// GetOldestUnsettled returns the oldest round that is due but not yet
	// marked settled, decided or not.
	GetOldestUnsettled(ctx context.Context, now time.Time) (*domain.Round, error)
	GetLatestNumber(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Round, error)
	// SetOutcome assigns the outcome exactly once. It fails with
	// domain.ErrOutcomeAlreadySet when the round is no longer undecided.
	SetOutcome(ctx context.Context, id string, outcome domain.Color, multiplier decimal.Decimal, updatedAt time.Time) error
	MarkSettled(ctx context.Context, id string, settledAt time.Time) error
}

// WagerRepository defines data access for wagers.
type WagerRepository interface {
	Create(ctx context.Context, tx Transaction, wager *domain.Wager) error
	GetByID(ctx context.Context, id string) (*domain.Wager, error)
	// GetPendingForUpdate locks the wager row. It fails with
	// domain.ErrWagerNotPending when the wager already reached a terminal
	// status, which is how re-settlement becomes a no-op.
	GetPendingForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wager, error)
	Settle(ctx context.Context, tx Transaction, id string, status domain.WagerStatus, profit decimal.Decimal, settledAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Wager, error)
	ListPendingByRound(ctx context.Context, roundID string) ([]*domain.Wager, error)
}

// TransactionRepository defines data access for the append-only ledger trail.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

// StatsRepository defines aggregate queries across the whole history.
type StatsRepository interface {
	Totals(ctx context.Context) (totalRounds, totalWagers int64, err error)
	// HouseProfit is the sum of lost stakes minus the sum of profits paid
	// out on won wagers.
	HouseProfit(ctx context.Context) (decimal.Decimal, error)
	// CheckBalances counts users whose balance disagrees with the
	// balance_after of their latest transaction, and users with a negative
	// balance.
	CheckBalances(ctx context.Context) (mismatched, negative int64, err error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation that failed with a transient error, such as
// a deadlock between wager intake and settlement.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock abstracts time so the scheduler can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// OutcomeSource draws the winning color for a closed round. Isolated behind
// an interface so the uniform random draw can later be swapped for a
// verifiable-random source.
type OutcomeSource interface {
	Draw(ctx context.Context, round *domain.Round) (domain.Color, error)
}

// EventPublisher broadcasts round-lifecycle events to subscribers.
// Delivery is best-effort; a publish failure never fails the operation
// that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// SettlementEngine resolves a closed round. The scheduler depends on this
// seam rather than on the concrete use case.
type SettlementEngine interface {
	SettleRound(ctx context.Context, roundID string) (*domain.Round, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// RoundCache caches the serialized current-round payload for the polling
// endpoint subscribers use to reconcile missed events.
type RoundCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
