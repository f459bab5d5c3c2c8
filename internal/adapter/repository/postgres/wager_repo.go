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

// WagerRepository implements usecase.WagerRepository.
type WagerRepository struct {
	pool *pgxpool.Pool
}

// NewWagerRepository creates a new WagerRepository.
func NewWagerRepository(pool *pgxpool.Pool) *WagerRepository {
	return &WagerRepository{pool: pool}
}

const wagerColumns = `id, user_id, round_id, color, stake, potential, status, profit, created_at, settled_at`

// Create inserts a new wager within a transaction.
func (r *WagerRepository) Create(ctx context.Context, tx usecase.Transaction, wager *domain.Wager) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO wagers (id, user_id, round_id, color, stake, potential, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		wager.ID,
		wager.UserID,
		wager.RoundID,
		string(wager.Color),
		wager.Stake,
		wager.Potential,
		string(wager.Status),
		wager.CreatedAt,
	)

	return err
}

// GetByID retrieves a wager by ID.
func (r *WagerRepository) GetByID(ctx context.Context, id string) (*domain.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1`

	return scanWager(r.pool.QueryRow(ctx, query, id))
}

// GetPendingForUpdate locks the wager row. A wager already in a terminal
// status yields ErrWagerNotPending, which makes re-settlement a no-op.
func (r *WagerRepository) GetPendingForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wager, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1 FOR UPDATE`

	wager, err := scanWager(pgxTx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if wager.Status != domain.WagerStatusPending {
		return nil, domain.ErrWagerNotPending
	}

	return wager, nil
}

// Settle transitions a pending wager to its terminal status. The guard on
// the pending state means a second settlement pass affects zero rows.
func (r *WagerRepository) Settle(ctx context.Context, tx usecase.Transaction, id string, status domain.WagerStatus, profit decimal.Decimal, settledAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE wagers
		SET status = $2, profit = $3, settled_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := pgxTx.Exec(ctx, query, id, string(status), profit, settledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWagerNotPending
	}

	return nil
}

// ListByUser lists a user's wagers, newest first.
func (r *WagerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWagers(rows)
}

// ListPendingByRound lists every pending wager on a round in stable order.
func (r *WagerRepository) ListPendingByRound(ctx context.Context, roundID string) ([]*domain.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE round_id = $1 AND status = 'pending'
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWagers(rows)
}

func collectWagers(rows pgx.Rows) ([]*domain.Wager, error) {
	var wagers []*domain.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		wagers = append(wagers, wager)
	}

	return wagers, rows.Err()
}

func scanWager(row rowScanner) (*domain.Wager, error) {
	var (
		wager  domain.Wager
		color  string
		status string
		profit decimal.NullDecimal
	)
	err := row.Scan(
		&wager.ID,
		&wager.UserID,
		&wager.RoundID,
		&color,
		&wager.Stake,
		&wager.Potential,
		&status,
		&profit,
		&wager.CreatedAt,
		&wager.SettledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWagerNotFound
	}
	if err != nil {
		return nil, err
	}

	wager.Color = domain.Color(color)
	wager.Status = domain.WagerStatus(status)
	if profit.Valid {
		wager.Profit = &profit.Decimal
	}

	return &wager, nil
}
