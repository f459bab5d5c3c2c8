package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
	"github.com/eluss/chromabet/internal/usecase/mocks"
)

func seedOpenRound(repo *mocks.MockRoundRepository) *domain.Round {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	round := &domain.Round{
		ID:      "round-1",
		Number:  1,
		StartAt: start,
		EndAt:   start.Add(time.Minute),
		Outcome: domain.Undecided,
	}
	repo.Seed(round)

	return round
}

func TestRoundHandler_GetCurrent(t *testing.T) {
	roundRepo := mocks.NewMockRoundRepository()
	seedOpenRound(roundRepo)

	handler := NewRoundHandler(usecase.NewRoundUseCase(roundRepo), nil, 0)

	rec := httptest.NewRecorder()
	handler.GetCurrent(rec, httptest.NewRequest(http.MethodGet, "/rounds/current", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.RoundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "round-1", resp.ID)
	assert.False(t, resp.Settled)
	assert.Nil(t, resp.Multiplier)
}

func TestRoundHandler_GetCurrentNoOpenRound(t *testing.T) {
	handler := NewRoundHandler(usecase.NewRoundUseCase(mocks.NewMockRoundRepository()), nil, 0)

	rec := httptest.NewRecorder()
	handler.GetCurrent(rec, httptest.NewRequest(http.MethodGet, "/rounds/current", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoundHandler_GetCurrentServesFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cached, _ := json.Marshal(dto.RoundResponse{ID: "round-cached", Number: 7})

	cache := mocks.NewMockRoundCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "current").Return(cached, nil)

	// The repository is empty; a hit must never reach it.
	handler := NewRoundHandler(usecase.NewRoundUseCase(mocks.NewMockRoundRepository()), cache, time.Second)

	rec := httptest.NewRecorder()
	handler.GetCurrent(rec, httptest.NewRequest(http.MethodGet, "/rounds/current", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.RoundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "round-cached", resp.ID)
}

func TestRoundHandler_GetCurrentFillsCacheOnMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	roundRepo := mocks.NewMockRoundRepository()
	seedOpenRound(roundRepo)

	cache := mocks.NewMockRoundCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "current").Return(nil, nil)
	cache.EXPECT().Set(gomock.Any(), "current", gomock.Any(), time.Second).Return(nil)

	handler := NewRoundHandler(usecase.NewRoundUseCase(roundRepo), cache, time.Second)

	rec := httptest.NewRecorder()
	handler.GetCurrent(rec, httptest.NewRequest(http.MethodGet, "/rounds/current", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRoundHandler_Get(t *testing.T) {
	roundRepo := mocks.NewMockRoundRepository()
	round := seedOpenRound(roundRepo)
	round.Outcome = domain.ColorGreen
	round.Multiplier = decimal.NewFromInt(2)
	round.Settled = true

	handler := NewRoundHandler(usecase.NewRoundUseCase(roundRepo), nil, 0)

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/rounds/round-1", nil), "id", "round-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.RoundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "green", resp.Outcome)
	require.NotNil(t, resp.Multiplier)
	assert.True(t, resp.Multiplier.Equal(decimal.NewFromInt(2)))
}

func TestRoundHandler_GetNotFound(t *testing.T) {
	handler := NewRoundHandler(usecase.NewRoundUseCase(mocks.NewMockRoundRepository()), nil, 0)

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/rounds/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoundHandler_ListRecent(t *testing.T) {
	roundRepo := mocks.NewMockRoundRepository()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		roundRepo.Seed(&domain.Round{
			ID:      "round-" + string(rune('0'+i)),
			Number:  i,
			StartAt: start,
			EndAt:   start.Add(time.Minute),
			Settled: true,
		})
	}

	handler := NewRoundHandler(usecase.NewRoundUseCase(roundRepo), nil, 0)

	rec := httptest.NewRecorder()
	handler.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/rounds?limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []*dto.RoundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, int64(3), resp[0].Number)
	assert.Equal(t, int64(2), resp[1].Number)
}
