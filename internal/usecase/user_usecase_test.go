package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
	"github.com/eluss/chromabet/internal/usecase/mocks"
	"github.com/eluss/chromabet/tests/testutil"
)

type userFixture struct {
	uc    *usecase.UserUseCase
	users *mocks.MockUserRepository
	txns  *mocks.MockTransactionRepository
	clock *testutil.FakeClock
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users: mocks.NewMockUserRepository(),
		txns:  mocks.NewMockTransactionRepository(),
		clock: testutil.NewFakeClock(roundStart),
	}

	f.uc = usecase.NewUserUseCase(
		mocks.NewMockTxManager(),
		f.users,
		f.txns,
		mocks.NewSequenceIDGenerator(),
		f.clock,
	)

	return f
}

func TestRegister(t *testing.T) {
	f := newUserFixture()

	user, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		Username: "alice",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Role != domain.RolePlayer {
		t.Errorf("role = %s, want player", user.Role)
	}
	if !user.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", user.Balance)
	}
	if user.HashedPassword != "" {
		t.Error("hashed password leaked on the returned user")
	}

	stored, err := f.users.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not verify the password: %v", err)
	}
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.RegisterInput
		wantErr error
	}{
		{
			name:    "username too short",
			input:   usecase.RegisterInput{Username: "ab", Password: "s3cret-pass"},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name:    "username with spaces",
			input:   usecase.RegisterInput{Username: "bad name", Password: "s3cret-pass"},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name:    "password too short",
			input:   usecase.RegisterInput{Username: "alice", Password: "short"},
			wantErr: domain.ErrPasswordTooWeak,
		},
		{
			name:    "duplicate username",
			input:   usecase.RegisterInput{Username: "taken", Password: "s3cret-pass"},
			wantErr: domain.ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture()
			f.users.Seed(&domain.User{ID: "user-0", Username: "taken"})

			_, err := f.uc.Register(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newUserFixture()

	if _, err := f.uc.Register(context.Background(), usecase.RegisterInput{
		Username: "alice",
		Password: "s3cret-pass",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := f.uc.Authenticate(context.Background(), "alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %s, want alice", user.Username)
	}
	if user.HashedPassword != "" {
		t.Error("hashed password leaked on the returned user")
	}

	if _, err := f.uc.Authenticate(context.Background(), "alice", "wrong-pass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want %v", err, domain.ErrUnauthorized)
	}
	if _, err := f.uc.Authenticate(context.Background(), "nobody", "s3cret-pass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("unknown user error = %v, want %v", err, domain.ErrUnauthorized)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	f := newUserFixture()
	f.users.Seed(&domain.User{ID: "user-1", Username: "alice", Balance: decimal.Zero})

	txn, err := f.uc.Deposit(context.Background(), "user-1", decimal.NewFromInt(100), "initial top-up")
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if !txn.BalanceBefore.IsZero() || !txn.BalanceAfter.Equal(decimal.NewFromInt(100)) {
		t.Errorf("deposit snapshot = %s -> %s, want 0 -> 100", txn.BalanceBefore, txn.BalanceAfter)
	}

	f.clock.Advance(time.Second)

	txn, err = f.uc.Withdraw(context.Background(), "user-1", decimal.NewFromInt(30), "cash out")
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if !txn.Amount.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("withdrawal amount = %s, want -30", txn.Amount)
	}
	if got := f.users.Balance("user-1"); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance = %s, want 70", got)
	}

	history, err := f.uc.ListTransactions(context.Background(), usecase.ListTransactionsInput{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("transactions = %d, want 2", len(history))
	}
	if history[0].Kind != domain.TransactionKindWithdrawal {
		t.Errorf("first entry kind = %s, want newest (withdrawal) first", history[0].Kind)
	}
}

func TestWithdrawRejections(t *testing.T) {
	f := newUserFixture()
	f.users.Seed(&domain.User{ID: "user-1", Username: "alice", Balance: decimal.NewFromInt(50)})

	if _, err := f.uc.Withdraw(context.Background(), "user-1", decimal.NewFromInt(100), ""); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("overdraw error = %v, want %v", err, domain.ErrInsufficientBalance)
	}
	if _, err := f.uc.Withdraw(context.Background(), "user-1", decimal.NewFromInt(-5), ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want %v", err, domain.ErrInvalidAmount)
	}
	if _, err := f.uc.Deposit(context.Background(), "user-1", decimal.Zero, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero deposit error = %v, want %v", err, domain.ErrInvalidAmount)
	}

	if got := f.users.Balance("user-1"); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s, want unchanged 50", got)
	}
}
