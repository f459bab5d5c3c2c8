package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// RoundRepository implements usecase.RoundRepository.
type RoundRepository struct {
	pool *pgxpool.Pool
}

// NewRoundRepository creates a new RoundRepository.
func NewRoundRepository(pool *pgxpool.Pool) *RoundRepository {
	return &RoundRepository{pool: pool}
}

const roundColumns = `id, number, start_at, end_at, outcome, multiplier, settled, settled_at, created_at, updated_at`

// CreateOpen inserts a new undecided round. The partial unique index on
// unsettled rounds turns a concurrent insert into ErrRoundOverlap, which
// keeps the single-active-round invariant without an explicit lock.
func (r *RoundRepository) CreateOpen(ctx context.Context, round *domain.Round) error {
	query := `
		INSERT INTO rounds (id, number, start_at, end_at, outcome, multiplier, settled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		round.ID,
		round.Number,
		round.StartAt,
		round.EndAt,
		string(round.Outcome),
		round.Multiplier,
		round.CreatedAt,
		round.UpdatedAt,
	)
	if isUniqueViolation(err, "rounds_single_unsettled") || isUniqueViolation(err, "rounds_number_key") {
		return domain.ErrRoundOverlap
	}

	return err
}

// GetByID retrieves a round by ID.
func (r *RoundRepository) GetByID(ctx context.Context, id string) (*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	return scanRound(r.pool.QueryRow(ctx, query, id))
}

// GetByIDTx retrieves a round by ID within a transaction, so wager intake
// observes outcome writes that committed after its first read.
func (r *RoundRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Round, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	return scanRound(pgxTx.QueryRow(ctx, query, id))
}

// GetCurrent retrieves the single unsettled round.
func (r *RoundRepository) GetCurrent(ctx context.Context) (*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE NOT settled ORDER BY number DESC LIMIT 1`

	return scanRound(r.pool.QueryRow(ctx, query))
}

// GetOldestUnsettled retrieves the oldest round that is due but not settled.
func (r *RoundRepository) GetOldestUnsettled(ctx context.Context, now time.Time) (*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE NOT settled AND end_at <= $1 ORDER BY number ASC LIMIT 1`

	return scanRound(r.pool.QueryRow(ctx, query, now))
}

// GetLatestNumber retrieves the highest round number ever assigned.
func (r *RoundRepository) GetLatestNumber(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(number), 0) FROM rounds`

	var number int64
	err := r.pool.QueryRow(ctx, query).Scan(&number)

	return number, err
}

// ListRecent lists the most recent rounds by number descending.
func (r *RoundRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds ORDER BY number DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*domain.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}

	return rounds, rows.Err()
}

// SetOutcome assigns the outcome exactly once. The guard on the undecided
// state makes concurrent draws and forced results race safely: exactly one
// write wins, the loser gets ErrOutcomeAlreadySet.
func (r *RoundRepository) SetOutcome(ctx context.Context, id string, outcome domain.Color, multiplier decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE rounds
		SET outcome = $2, multiplier = $3, updated_at = $4
		WHERE id = $1 AND outcome = ''
	`

	tag, err := r.pool.Exec(ctx, query, id, string(outcome), multiplier, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Distinguish a missing round from a decided one.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT true FROM rounds WHERE id = $1`, id).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoundNotFound
		}
		return err
	}

	return domain.ErrOutcomeAlreadySet
}

// MarkSettled flags a round as fully settled.
func (r *RoundRepository) MarkSettled(ctx context.Context, id string, settledAt time.Time) error {
	query := `UPDATE rounds SET settled = true, settled_at = $2, updated_at = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, settledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoundNotFound
	}

	return nil
}

func scanRound(row rowScanner) (*domain.Round, error) {
	var (
		round   domain.Round
		outcome string
	)
	err := row.Scan(
		&round.ID,
		&round.Number,
		&round.StartAt,
		&round.EndAt,
		&outcome,
		&round.Multiplier,
		&round.Settled,
		&round.SettledAt,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRoundNotFound
	}
	if err != nil {
		return nil, err
	}

	round.Outcome = domain.Color(outcome)

	return &round, nil
}
