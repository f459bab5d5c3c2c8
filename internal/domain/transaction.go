package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a balance mutation.
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindBet        TransactionKind = "bet"
	TransactionKindWin        TransactionKind = "win"
)

// Transaction is one append-only ledger record. Every balance mutation
// produces exactly one transaction whose BalanceBefore/BalanceAfter snapshot
// the user's balance immediately around that single mutation.
type Transaction struct {
	ID            string
	UserID        string
	Amount        decimal.Decimal
	Kind          TransactionKind
	Reference     string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// Consistent reports whether the snapshot matches the signed amount.
func (t *Transaction) Consistent() bool {
	return t.BalanceBefore.Add(t.Amount).Equal(t.BalanceAfter)
}
