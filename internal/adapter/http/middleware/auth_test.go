package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/infrastructure/auth"
)

func TestAuthenticatePutsUserOnContext(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate(&domain.User{ID: "user-1", Username: "alice", Role: domain.RolePlayer})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var got *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = domain.UserFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	Authenticate(manager)(next).ServeHTTP(rr, req)

	if got == nil {
		t.Fatal("expected user on context")
	}
	if got.ID != "user-1" || got.Username != "alice" || got.Role != domain.RolePlayer {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be reached")
			})

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			Authenticate(manager)(next).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/rounds/round-1/outcome", nil)
	req = req.WithContext(domain.ContextWithUser(req.Context(), &domain.User{ID: "admin-1", Role: domain.RoleAdmin}))
	rr := httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected admin to pass, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/rounds/round-1/outcome", nil)
	req = req.WithContext(domain.ContextWithUser(req.Context(), &domain.User{ID: "user-1", Role: domain.RolePlayer}))
	rr = httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected player to be forbidden, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/rounds/round-1/outcome", nil)
	rr = httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected anonymous to be unauthorized, got %d", rr.Code)
	}
}
