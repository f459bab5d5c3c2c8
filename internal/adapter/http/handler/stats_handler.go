package handler

import (
	"errors"
	"net/http"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/usecase"
)

// StatsHandler handles house-wide aggregate endpoints.
type StatsHandler struct {
	statsUC *usecase.StatsUseCase
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsUC *usecase.StatsUseCase) *StatsHandler {
	return &StatsHandler{statsUC: statsUC}
}

// Summary returns total rounds, total wagers and house profit.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsUC.GetSummary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromSummary(summary))
}

// Consistency runs the ledger consistency check. An inconsistent ledger is
// reported as 500: it means an invariant broke, not that the request is bad.
func (h *StatsHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	ok, err := h.statsUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusInternalServerError, dto.ConsistencyResponse{Consistent: false})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: ok})
}
