package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// AdminHandler handles administrative round operations.
type AdminHandler struct {
	settlementUC *usecase.SettlementUseCase
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(settlementUC *usecase.SettlementUseCase) *AdminHandler {
	return &AdminHandler{settlementUC: settlementUC}
}

// ForceOutcome assigns a round's outcome manually, replacing the random draw.
func (h *AdminHandler) ForceOutcome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing round ID", "")
		return
	}

	var req dto.ForceOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	round, err := h.settlementUC.ForceOutcome(r.Context(), id, domain.Color(req.Outcome))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to force outcome", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RoundFromDomain(round))
}
