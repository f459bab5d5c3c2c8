package handler

import (
	"encoding/json"
	"net/http"

	"github.com/eluss/chromabet/internal/adapter/http/dto"
	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/infrastructure/auth"
	"github.com/eluss/chromabet/internal/usecase"
)

// UserHandler handles registration, authentication and balance endpoints.
type UserHandler struct {
	userUC     *usecase.UserUseCase
	jwtManager *auth.JWTManager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUC *usecase.UserUseCase, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{
		userUC:     userUC,
		jwtManager: jwtManager,
	}
}

// Register creates a new player account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Register(r.Context(), usecase.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.RolePlayer,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to register", err.Error())

		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TokenResponse{
		Token: token,
		User:  dto.UserFromDomain(user),
	})
}

// Login verifies credentials and returns a token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "invalid credentials", "")

		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token: token,
		User:  dto.UserFromDomain(user),
	})
}

// Me returns the authenticated user with their current balance.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	authed, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	// The token only carries identity; the balance comes from storage.
	user, err := h.userUC.GetUser(r.Context(), authed.ID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get user", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// Deposit credits the authenticated user's balance.
func (h *UserHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, false)
}

// Withdraw debits the authenticated user's balance.
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, true)
}

func (h *UserHandler) mutateBalance(w http.ResponseWriter, r *http.Request, withdraw bool) {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := req.ParseAmount()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	var txn *domain.Transaction
	if withdraw {
		txn, err = h.userUC.Withdraw(r.Context(), user.ID, amount, req.Reference)
	} else {
		txn, err = h.userUC.Deposit(r.Context(), user.ID, amount, req.Reference)
	}
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update balance", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// ListTransactions lists the authenticated user's transactions.
func (h *UserHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.userUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		UserID: user.ID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
