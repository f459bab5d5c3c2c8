package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/usecase"
)

// WagerHandler handles wager-related HTTP requests.
type WagerHandler struct {
	wagerUC *usecase.WagerUseCase
}

// NewWagerHandler creates a new WagerHandler.
func NewWagerHandler(wagerUC *usecase.WagerUseCase) *WagerHandler {
	return &WagerHandler{wagerUC: wagerUC}
}

// Place places a wager for the authenticated user.
func (h *WagerHandler) Place(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.PlaceWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(user.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid stake", err.Error())
		return
	}

	wager, err := h.wagerUC.PlaceWager(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to place wager", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.WagerFromDomain(wager))
}

// Get retrieves one of the authenticated user's wagers by ID.
func (h *WagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wager ID", "")
		return
	}

	wager, err := h.wagerUC.GetWager(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get wager", err.Error())

		return
	}

	// Other users' wagers are indistinguishable from missing ones.
	if wager.UserID != user.ID && !user.Role.CanForceOutcome() {
		writeError(w, http.StatusNotFound, "failed to get wager", domain.ErrWagerNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WagerFromDomain(wager))
}

// ListMine lists the authenticated user's wagers, newest first.
func (h *WagerHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	wagers, err := h.wagerUC.ListWagersByUser(r.Context(), usecase.ListWagersByUserInput{
		UserID: user.ID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list wagers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WagersFromDomain(wagers))
}
