package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/auth"
	"github.com/peopleflow/peopleflow/internal/candidates"
	"github.com/peopleflow/peopleflow/internal/observability"
	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
	_ "github.com/peopleflow/peopleflow/internal/testing/guard"
)

func newTestRouter(t *testing.T) (http.Handler, *shared.SessionManager) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := cache.New(context.Background(), mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := shared.NewSessionManager(client, time.Hour)
	guard := rbac.Middleware{}

	authHandler := auth.NewHandler(logger, auth.NewService(nil), rbac.NewService(nil), sessions)
	candidatesHandler := candidates.NewHandler(logger, nil, guard)

	router := NewRouter(RouterParams{
		Logger:            logger,
		Config:            &Config{AppEnv: "development", AppRequestTimeout: 5 * time.Second},
		SessionManager:    sessions,
		AuthHandler:       authHandler,
		CandidatesHandler: candidatesHandler,
		Metrics:           observability.NewMetrics(),
	})
	return router, sessions
}

func TestRouterHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterAnonymousRequestsAreRejectedByGuards(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/auth/me", "/candidates"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouterUnknownBearerTokenIsAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterResolvesIssuedSession(t *testing.T) {
	router, sessions := newTestRouter(t)

	token, err := sessions.Issue(context.Background(), shared.Session{
		UserID:   7,
		TenantID: 3,
		Email:    "owner@acme.local",
		Roles:    []shared.RoleSnapshot{{Name: shared.RoleTenantAdmin}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "owner@acme.local")
}

func TestRouterServesMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	// Generate one request so the counter vector has a sample.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "peopleflow_http_requests_total")
}

func TestRouterSetsSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
