package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
	"github.com/eluss/chromabet/internal/usecase/mocks"
	"github.com/eluss/chromabet/tests/testutil"
)

type wagerHandlerFixture struct {
	handler   *WagerHandler
	userRepo  *mocks.MockUserRepository
	wagerRepo *mocks.MockWagerRepository
}

func newWagerHandler(t *testing.T) *wagerHandlerFixture {
	t.Helper()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	userRepo := mocks.NewMockUserRepository()
	userRepo.Seed(&domain.User{
		ID:       "user-1",
		Username: "alice",
		Balance:  decimal.NewFromInt(1000),
		Role:     domain.RolePlayer,
	})

	roundRepo := mocks.NewMockRoundRepository()
	roundRepo.Seed(&domain.Round{
		ID:      "round-1",
		Number:  1,
		StartAt: start,
		EndAt:   start.Add(time.Minute),
		Outcome: domain.Undecided,
	})

	wagerRepo := mocks.NewMockWagerRepository()

	uc := usecase.NewWagerUseCase(
		mocks.NewMockTxManager(),
		userRepo,
		roundRepo,
		wagerRepo,
		mocks.NewMockTransactionRepository(),
		mocks.NewSequenceIDGenerator(),
		testutil.NewFakeClock(start.Add(10*time.Second)),
		nil,
		domain.DefaultPayoutTable(),
		decimal.NewFromInt(10),
		nil,
	)

	return &wagerHandlerFixture{
		handler:   NewWagerHandler(uc),
		userRepo:  userRepo,
		wagerRepo: wagerRepo,
	}
}

func TestWagerHandler_Place(t *testing.T) {
	f := newWagerHandler(t)

	body, _ := json.Marshal(dto.PlaceWagerRequest{RoundID: "round-1", Color: "red", Stake: "100"})
	req := withUser(httptest.NewRequest(http.MethodPost, "/wagers", bytes.NewReader(body)), &domain.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	f.handler.Place(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.WagerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "red", resp.Color)
	assert.Equal(t, domain.WagerStatusPending, resp.Status)
	assert.True(t, resp.Potential.Equal(decimal.NewFromInt(200)))
	assert.True(t, f.userRepo.Balance("user-1").Equal(decimal.NewFromInt(900)))
}

func TestWagerHandler_PlaceWithoutUser(t *testing.T) {
	f := newWagerHandler(t)

	body, _ := json.Marshal(dto.PlaceWagerRequest{RoundID: "round-1", Color: "red", Stake: "100"})
	rec := httptest.NewRecorder()

	f.handler.Place(rec, httptest.NewRequest(http.MethodPost, "/wagers", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWagerHandler_PlaceRejections(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.PlaceWagerRequest
		expected int
	}{
		{"invalid color", dto.PlaceWagerRequest{RoundID: "round-1", Color: "blue", Stake: "100"}, http.StatusBadRequest},
		{"malformed stake", dto.PlaceWagerRequest{RoundID: "round-1", Color: "red", Stake: "ten"}, http.StatusBadRequest},
		{"below minimum", dto.PlaceWagerRequest{RoundID: "round-1", Color: "red", Stake: "5"}, http.StatusBadRequest},
		{"unknown round", dto.PlaceWagerRequest{RoundID: "round-404", Color: "red", Stake: "100"}, http.StatusNotFound},
		{"insufficient balance", dto.PlaceWagerRequest{RoundID: "round-1", Color: "red", Stake: "5000"}, http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newWagerHandler(t)

			body, _ := json.Marshal(tt.req)
			req := withUser(httptest.NewRequest(http.MethodPost, "/wagers", bytes.NewReader(body)), &domain.User{ID: "user-1"})
			rec := httptest.NewRecorder()

			f.handler.Place(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
			assert.Empty(t, f.wagerRepo.All())
		})
	}
}

func TestWagerHandler_GetOwnWager(t *testing.T) {
	f := newWagerHandler(t)
	f.wagerRepo.Seed(&domain.Wager{
		ID:      "wager-1",
		UserID:  "user-1",
		RoundID: "round-1",
		Color:   domain.ColorRed,
		Stake:   decimal.NewFromInt(100),
		Status:  domain.WagerStatusPending,
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/wagers/wager-1", nil), &domain.User{ID: "user-1"})
	req = setChiURLParam(req, "id", "wager-1")
	rec := httptest.NewRecorder()

	f.handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWagerHandler_GetForeignWagerHidden(t *testing.T) {
	f := newWagerHandler(t)
	f.wagerRepo.Seed(&domain.Wager{
		ID:     "wager-1",
		UserID: "user-2",
		Status: domain.WagerStatusPending,
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/wagers/wager-1", nil), &domain.User{ID: "user-1", Role: domain.RolePlayer})
	req = setChiURLParam(req, "id", "wager-1")
	rec := httptest.NewRecorder()

	f.handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWagerHandler_GetForeignWagerVisibleToAdmin(t *testing.T) {
	f := newWagerHandler(t)
	f.wagerRepo.Seed(&domain.Wager{
		ID:     "wager-1",
		UserID: "user-2",
		Status: domain.WagerStatusPending,
	})

	req := withUser(httptest.NewRequest(http.MethodGet, "/wagers/wager-1", nil), &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	req = setChiURLParam(req, "id", "wager-1")
	rec := httptest.NewRecorder()

	f.handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWagerHandler_ListMine(t *testing.T) {
	f := newWagerHandler(t)
	f.wagerRepo.Seed(
		&domain.Wager{ID: "wager-1", UserID: "user-1", Status: domain.WagerStatusPending},
		&domain.Wager{ID: "wager-2", UserID: "user-2", Status: domain.WagerStatusPending},
	)

	req := withUser(httptest.NewRequest(http.MethodGet, "/wagers", nil), &domain.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	f.handler.ListMine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []*dto.WagerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "wager-1", resp[0].ID)
}
