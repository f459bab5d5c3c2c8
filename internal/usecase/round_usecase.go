package usecase

import (
	"context"

	"github.com/eluss/chromabet/internal/domain"
)

// RoundUseCase exposes read access to rounds for polling clients.
type RoundUseCase struct {
	roundRepo RoundRepository
}

// NewRoundUseCase creates a new RoundUseCase.
func NewRoundUseCase(roundRepo RoundRepository) *RoundUseCase {
	return &RoundUseCase{roundRepo: roundRepo}
}

// GetCurrentRound returns the single currently open round. Subscribers poll
// this to reconcile missed round-lifecycle events.
func (uc *RoundUseCase) GetCurrentRound(ctx context.Context) (*domain.Round, error) {
	return uc.roundRepo.GetCurrent(ctx)
}

// GetRound retrieves a round by ID.
func (uc *RoundUseCase) GetRound(ctx context.Context, id string) (*domain.Round, error) {
	return uc.roundRepo.GetByID(ctx, id)
}

// ListRecentRounds lists the most recent rounds by round number descending.
func (uc *RoundUseCase) ListRecentRounds(ctx context.Context, limit int) ([]*domain.Round, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	return uc.roundRepo.ListRecent(ctx, limit)
}
