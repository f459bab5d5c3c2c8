package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// MockTx is a no-op transaction recording its lifecycle.
type MockTx struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTxManager is a mock implementation of TransactionManager.
type MockTxManager struct {
	mu   sync.Mutex
	Txs  []*MockTx
	Fail error

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if m.Fail != nil {
		return nil, m.Fail
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTx{}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}

// MockUserRepository is a map-backed mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Seed(users ...*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Balance = balance
	u.UpdatedAt = updatedAt
	return nil
}

// Balance returns the stored balance for assertions.
func (m *MockUserRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u.Balance
	}
	return decimal.Zero
}

// MockRoundRepository is a map-backed mock implementation of RoundRepository.
type MockRoundRepository struct {
	mu     sync.RWMutex
	rounds map[string]*domain.Round

	CreateOpenFunc func(ctx context.Context, round *domain.Round) error
	SetOutcomeFunc func(ctx context.Context, id string, outcome domain.Color, multiplier decimal.Decimal, updatedAt time.Time) error
}

func NewMockRoundRepository() *MockRoundRepository {
	return &MockRoundRepository{rounds: make(map[string]*domain.Round)}
}

func (m *MockRoundRepository) Seed(rounds ...*domain.Round) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rounds {
		cp := *r
		m.rounds[r.ID] = &cp
	}
}

func (m *MockRoundRepository) CreateOpen(ctx context.Context, round *domain.Round) error {
	if m.CreateOpenFunc != nil {
		return m.CreateOpenFunc(ctx, round)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if !r.Settled {
			return domain.ErrRoundOverlap
		}
	}
	cp := *round
	m.rounds[round.ID] = &cp
	return nil
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id string) (*domain.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rounds[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrRoundNotFound
}

func (m *MockRoundRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Round, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRoundRepository) GetCurrent(ctx context.Context) (*domain.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rounds {
		if !r.Settled {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRoundNotFound
}

func (m *MockRoundRepository) GetOldestUnsettled(ctx context.Context, now time.Time) (*domain.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var oldest *domain.Round
	for _, r := range m.rounds {
		if r.Settled || now.Before(r.EndAt) {
			continue
		}
		if oldest == nil || r.Number < oldest.Number {
			oldest = r
		}
	}

	if oldest == nil {
		return nil, domain.ErrRoundNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (m *MockRoundRepository) GetLatestNumber(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest int64
	for _, r := range m.rounds {
		if r.Number > latest {
			latest = r.Number
		}
	}
	return latest, nil
}

func (m *MockRoundRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rounds := make([]*domain.Round, 0, len(m.rounds))
	for _, r := range m.rounds {
		cp := *r
		rounds = append(rounds, &cp)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number > rounds[j].Number })

	if len(rounds) > limit {
		rounds = rounds[:limit]
	}
	return rounds, nil
}

func (m *MockRoundRepository) SetOutcome(ctx context.Context, id string, outcome domain.Color, multiplier decimal.Decimal, updatedAt time.Time) error {
	if m.SetOutcomeFunc != nil {
		return m.SetOutcomeFunc(ctx, id, outcome, multiplier, updatedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return domain.ErrRoundNotFound
	}
	if r.Outcome != domain.Undecided {
		return domain.ErrOutcomeAlreadySet
	}
	r.Outcome = outcome
	r.Multiplier = multiplier
	r.UpdatedAt = updatedAt
	return nil
}

func (m *MockRoundRepository) MarkSettled(ctx context.Context, id string, settledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return domain.ErrRoundNotFound
	}
	r.Settled = true
	r.SettledAt = &settledAt
	r.UpdatedAt = settledAt
	return nil
}

// MockWagerRepository is a map-backed mock implementation of WagerRepository.
type MockWagerRepository struct {
	mu     sync.RWMutex
	wagers map[string]*domain.Wager

	CreateFunc func(ctx context.Context, tx usecase.Transaction, wager *domain.Wager) error
	SettleFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.WagerStatus, profit decimal.Decimal, settledAt time.Time) error
}

func NewMockWagerRepository() *MockWagerRepository {
	return &MockWagerRepository{wagers: make(map[string]*domain.Wager)}
}

func (m *MockWagerRepository) Seed(wagers ...*domain.Wager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range wagers {
		cp := *w
		m.wagers[w.ID] = &cp
	}
}

func (m *MockWagerRepository) Create(ctx context.Context, tx usecase.Transaction, wager *domain.Wager) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, wager)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *wager
	m.wagers[wager.ID] = &cp
	return nil
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id string) (*domain.Wager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wagers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, domain.ErrWagerNotFound
}

func (m *MockWagerRepository) GetPendingForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wagers[id]
	if !ok {
		return nil, domain.ErrWagerNotFound
	}
	if w.Status != domain.WagerStatusPending {
		return nil, domain.ErrWagerNotPending
	}
	cp := *w
	return &cp, nil
}

func (m *MockWagerRepository) Settle(ctx context.Context, tx usecase.Transaction, id string, status domain.WagerStatus, profit decimal.Decimal, settledAt time.Time) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, tx, id, status, profit, settledAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wagers[id]
	if !ok {
		return domain.ErrWagerNotFound
	}
	if w.Status != domain.WagerStatusPending {
		return domain.ErrWagerNotPending
	}
	w.Status = status
	w.Profit = &profit
	w.SettledAt = &settledAt
	return nil
}

func (m *MockWagerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Wager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var wagers []*domain.Wager
	for _, w := range m.wagers {
		if w.UserID == userID {
			cp := *w
			wagers = append(wagers, &cp)
		}
	}
	sort.Slice(wagers, func(i, j int) bool { return wagers[i].CreatedAt.After(wagers[j].CreatedAt) })

	if offset > len(wagers) {
		offset = len(wagers)
	}
	wagers = wagers[offset:]
	if len(wagers) > limit {
		wagers = wagers[:limit]
	}
	return wagers, nil
}

func (m *MockWagerRepository) ListPendingByRound(ctx context.Context, roundID string) ([]*domain.Wager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var wagers []*domain.Wager
	for _, w := range m.wagers {
		if w.RoundID == roundID && w.Status == domain.WagerStatusPending {
			cp := *w
			wagers = append(wagers, &cp)
		}
	}
	sort.Slice(wagers, func(i, j int) bool { return wagers[i].ID < wagers[j].ID })
	return wagers, nil
}

// All returns every stored wager for assertions.
func (m *MockWagerRepository) All() []*domain.Wager {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wagers := make([]*domain.Wager, 0, len(m.wagers))
	for _, w := range m.wagers {
		cp := *w
		wagers = append(wagers, &cp)
	}
	return wagers
}

// MockTransactionRepository is a slice-backed mock implementation of
// TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction

	CreateFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *txn
	m.txns = append(m.txns, &cp)
	return nil
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var txns []*domain.Transaction
	for _, t := range m.txns {
		if t.UserID == userID {
			cp := *t
			txns = append(txns, &cp)
		}
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].CreatedAt.After(txns[j].CreatedAt) })

	if offset > len(txns) {
		offset = len(txns)
	}
	txns = txns[offset:]
	if len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

// ByKind returns a user's transactions of one kind for assertions.
func (m *MockTransactionRepository) ByKind(userID string, kind domain.TransactionKind) []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var txns []*domain.Transaction
	for _, t := range m.txns {
		if t.UserID == userID && t.Kind == kind {
			cp := *t
			txns = append(txns, &cp)
		}
	}
	return txns
}

// SequenceIDGenerator generates deterministic sequential IDs.
type SequenceIDGenerator struct {
	mu sync.Mutex
	n  int
}

func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%06d", g.n)
}

// CapturePublisher records published events.
type CapturePublisher struct {
	mu     sync.Mutex
	Events []*domain.Event
	Fail   error
}

func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

func (p *CapturePublisher) Publish(ctx context.Context, event *domain.Event) error {
	if p.Fail != nil {
		return p.Fail
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// ByType returns captured events of one type.
func (p *CapturePublisher) ByType(eventType string) []*domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []*domain.Event
	for _, e := range p.Events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}

// FixedOutcomeSource always draws the same color.
type FixedOutcomeSource struct {
	Color domain.Color
	Fail  error
	Draws int
}

func (s *FixedOutcomeSource) Draw(ctx context.Context, round *domain.Round) (domain.Color, error) {
	s.Draws++
	if s.Fail != nil {
		return domain.Undecided, s.Fail
	}
	return s.Color, nil
}
