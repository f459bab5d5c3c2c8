package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. The
// transactions table is append-only; there are no update or delete paths.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new ledger transaction within a database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (id, user_id, amount, kind, reference, balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Amount,
		string(txn.Kind),
		txn.Reference,
		txn.BalanceBefore,
		txn.BalanceAfter,
		txn.CreatedAt,
	)

	return err
}

// ListByUser lists a user's transactions, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, kind, reference, balance_before, balance_after, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		var (
			txn  domain.Transaction
			kind string
		)
		err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Amount,
			&kind,
			&txn.Reference,
			&txn.BalanceBefore,
			&txn.BalanceAfter,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		txn.Kind = domain.TransactionKind(kind)
		txns = append(txns, &txn)
	}

	return txns, rows.Err()
}
