package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/usecase"
	"github.com/eluss/chromabet/internal/usecase/mocks"
)

func TestStatsHandler_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	statsRepo := mocks.NewMockStatsRepository(ctrl)
	statsRepo.EXPECT().Totals(gomock.Any()).Return(int64(42), int64(317), nil)
	statsRepo.EXPECT().HouseProfit(gomock.Any()).Return(decimal.NewFromInt(1250), nil)

	handler := NewStatsHandler(usecase.NewStatsUseCase(statsRepo, zerolog.Nop()))

	rec := httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.TotalRounds)
	assert.Equal(t, int64(317), resp.TotalWagers)
	assert.True(t, resp.HouseProfit.Equal(decimal.NewFromInt(1250)))
}

func TestStatsHandler_ConsistencyClean(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	statsRepo := mocks.NewMockStatsRepository(ctrl)
	statsRepo.EXPECT().CheckBalances(gomock.Any()).Return(int64(0), int64(0), nil)

	handler := NewStatsHandler(usecase.NewStatsUseCase(statsRepo, zerolog.Nop()))

	rec := httptest.NewRecorder()
	handler.Consistency(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/consistency", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ConsistencyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Consistent)
}

func TestStatsHandler_ConsistencyViolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	statsRepo := mocks.NewMockStatsRepository(ctrl)
	statsRepo.EXPECT().CheckBalances(gomock.Any()).Return(int64(2), int64(0), nil)

	handler := NewStatsHandler(usecase.NewStatsUseCase(statsRepo, zerolog.Nop()))

	rec := httptest.NewRecorder()
	handler.Consistency(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/consistency", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp dto.ConsistencyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Consistent)
}
