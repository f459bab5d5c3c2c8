package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/eluss/chromabet/internal/domain"
)

// UserUseCase handles account registration, authentication and the
// deposit/withdrawal side of the ledger.
type UserUseCase struct {
	txManager TransactionManager
	userRepo  UserRepository
	txnRepo   TransactionRepository
	idGen     IDGenerator
	clock     Clock
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	txManager TransactionManager,
	userRepo UserRepository,
	txnRepo TransactionRepository,
	idGen IDGenerator,
	clock Clock,
) *UserUseCase {
	return &UserUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		txnRepo:   txnRepo,
		idGen:     idGen,
		clock:     clock,
	}
}

// RegisterInput represents input for registering a user.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
}

// Register creates a new user with a zero balance.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RolePlayer
	}

	existing, err := uc.userRepo.GetByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Username:       input.Username,
		HashedPassword: string(hashed),
		Balance:        decimal.Zero,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.HashedPassword = ""

	return user, nil
}

// Authenticate verifies credentials and returns the user.
func (uc *UserUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	user.HashedPassword = ""

	return user, nil
}

// GetUser retrieves a user by ID.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""

	return user, nil
}

// Deposit credits a user's balance and records a deposit transaction.
func (uc *UserUseCase) Deposit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	return uc.mutateBalance(ctx, userID, amount, domain.TransactionKindDeposit, reference)
}

// Withdraw debits a user's balance and records a withdrawal transaction.
func (uc *UserUseCase) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, reference string) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	return uc.mutateBalance(ctx, userID, amount.Neg(), domain.TransactionKindWithdrawal, reference)
}

// mutateBalance applies one signed balance change and its ledger record as a
// single atomic unit, serialized on the user row.
func (uc *UserUseCase) mutateBalance(ctx context.Context, userID string, amount decimal.Decimal, kind domain.TransactionKind, reference string) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	user, err := uc.userRepo.GetByIDForUpdate(txCtx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := user.Balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, domain.ErrInsufficientBalance
	}

	now := uc.clock.Now()
	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		UserID:        user.ID,
		Amount:        amount,
		Kind:          kind,
		Reference:     reference,
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

	return txn, nil
}

// ListTransactionsInput represents input for listing a user's transactions.
type ListTransactionsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListTransactions lists a user's transactions, newest first.
func (uc *UserUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	return uc.txnRepo.ListByUser(ctx, input.UserID, limit, offset)
}
