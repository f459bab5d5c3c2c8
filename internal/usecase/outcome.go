package usecase

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/eluss/chromabet/internal/domain"
)

// RandomOutcomeSource draws uniformly from the drawable color set.
type RandomOutcomeSource struct{}

// NewRandomOutcomeSource creates a new RandomOutcomeSource.
func NewRandomOutcomeSource() RandomOutcomeSource {
	return RandomOutcomeSource{}
}

// Draw picks a color uniformly at random.
func (RandomOutcomeSource) Draw(_ context.Context, _ *domain.Round) (domain.Color, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(domain.Colors))))
	if err != nil {
		return domain.Undecided, err
	}

	return domain.Colors[n.Int64()], nil
}
