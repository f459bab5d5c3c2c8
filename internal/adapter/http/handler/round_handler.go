package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/usecase"
)

const currentRoundCacheKey = "current"

// RoundHandler handles round read endpoints. The current-round endpoint is
// the reconciliation path for clients that missed pub/sub events, so it is
// backed by a short-TTL cache to survive polling storms.
type RoundHandler struct {
	roundUC  *usecase.RoundUseCase
	cache    usecase.RoundCache
	cacheTTL time.Duration
}

// NewRoundHandler creates a new RoundHandler. cache may be nil.
func NewRoundHandler(roundUC *usecase.RoundUseCase, cache usecase.RoundCache, cacheTTL time.Duration) *RoundHandler {
	return &RoundHandler{
		roundUC:  roundUC,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GetCurrent returns the currently open round.
func (h *RoundHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		cached, err := h.cache.Get(r.Context(), currentRoundCacheKey)
		if err == nil && cached != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	round, err := h.roundUC.GetCurrentRound(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get current round", err.Error())

		return
	}

	resp := dto.RoundFromDomain(round)

	if h.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			_ = h.cache.Set(r.Context(), currentRoundCacheKey, payload, h.cacheTTL)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get retrieves a round by ID.
func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing round ID", "")
		return
	}

	round, err := h.roundUC.GetRound(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get round", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RoundFromDomain(round))
}

// ListRecent lists the most recent rounds, newest first.
func (h *RoundHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	rounds, err := h.roundUC.ListRecentRounds(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rounds", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RoundsFromDomain(rounds))
}
