package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/devconnector/internal/domain"
	"github.com/msomdec/devconnector/internal/handler"
	"github.com/msomdec/devconnector/internal/repository/sqlite"
	"github.com/msomdec/devconnector/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRepos struct {
	repos []domain.Repo
	err   error
}

func (s *stubRepos) FetchPublicRepos(context.Context, string) ([]domain.Repo, error) {
	return s.repos, s.err
}

type testEnv struct {
	db       *sqlite.DB
	auth     *service.AuthService
	profiles *service.ProfileService
	posts    *service.PostService
	repos    *stubRepos
}

func newTestServices(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath, discardLogger())
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := db.Documents()
	repos := &stubRepos{}
	return &testEnv{
		db:       db,
		auth:     service.NewAuthService(store, testJWTSecret, 4, discardLogger()),
		profiles: service.NewProfileService(store, repos, discardLogger()),
		posts:    service.NewPostService(store, discardLogger()),
		repos:    repos,
	}
}

func registerToken(t *testing.T, auth *service.AuthService, name, email string) string {
	t.Helper()
	token, err := auth.Register(context.Background(), name, email, "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return token
}

func TestRequireAuth_ValidToken(t *testing.T) {
	env := newTestServices(t)
	token := registerToken(t, env.auth, "Valid User", "valid@example.com")

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"x-auth-token", "x-auth-token", token},
		{"bearer", "Authorization", "Bearer " + token},
		{"bearer lowercase", "Authorization", "bearer " + token},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser string
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if user := handler.UserFromContext(r.Context()); user != nil {
					gotUser = user.Name
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set(tc.header, tc.value)
			w := httptest.NewRecorder()

			handler.RequireAuth(env.auth, discardLogger(), inner).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if gotUser != "Valid User" {
				t.Fatalf("expected user 'Valid User', got %q", gotUser)
			}
		})
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	env := newTestServices(t)
	token := registerToken(t, env.auth, "Tamper", "tamper@example.com")

	// A valid token for an account that no longer exists.
	orphan := registerToken(t, env.auth, "Gone", "gone@example.com")
	orphanID, err := env.auth.ValidateToken(orphan)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := env.profiles.DeleteAccount(context.Background(), orphanID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "invalid.jwt.token"},
		{"tampered", token[:len(token)-5] + "XXXXX"},
		{"deleted user", orphan},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("inner handler should not be called")
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.token != "" {
				req.Header.Set("x-auth-token", tc.token)
			}
			w := httptest.NewRecorder()

			handler.RequireAuth(env.auth, discardLogger(), inner).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	limiter := service.NewTokenBucket(ctx, 0.001, 2)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RateLimit(limiter, discardLogger(), inner)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
	req.RemoteAddr = "198.51.100.1:4444"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for another client, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	w := httptest.NewRecorder()
	handler.SecurityHeaders(inner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}
