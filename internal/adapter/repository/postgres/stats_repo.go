package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StatsRepository implements usecase.StatsRepository.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Totals counts all rounds and wagers ever recorded.
func (r *StatsRepository) Totals(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM rounds),
			(SELECT COUNT(*) FROM wagers)
	`

	var rounds, wagers int64
	err := r.pool.QueryRow(ctx, query).Scan(&rounds, &wagers)

	return rounds, wagers, err
}

// HouseProfit sums lost stakes minus profits paid out on won wagers.
// Pending wagers are excluded; their stake is still in play.
func (r *StatsRepository) HouseProfit(ctx context.Context) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE status
				WHEN 'lost' THEN stake
				WHEN 'won'  THEN -profit
				ELSE 0
			END
		), 0)
		FROM wagers
		WHERE status IN ('won', 'lost')
	`

	var profit decimal.Decimal
	err := r.pool.QueryRow(ctx, query).Scan(&profit)

	return profit, err
}

// CheckBalances counts users whose balance disagrees with the balance_after
// of their latest transaction, and users with a negative balance. Users with
// no transactions are held against a zero balance.
func (r *StatsRepository) CheckBalances(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT
			(
				SELECT COUNT(*)
				FROM users u
				LEFT JOIN LATERAL (
					SELECT balance_after
					FROM transactions t
					WHERE t.user_id = u.id
					ORDER BY t.created_at DESC, t.id DESC
					LIMIT 1
				) latest ON true
				WHERE u.balance <> COALESCE(latest.balance_after, 0)
			),
			(SELECT COUNT(*) FROM users WHERE balance < 0)
	`

	var mismatched, negative int64
	err := r.pool.QueryRow(ctx, query).Scan(&mismatched, &negative)

	return mismatched, negative, err
}
