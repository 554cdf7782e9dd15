package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noSessions struct{}

func (noSessions) Resolve(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUnauthorized
}

func (noSessions) Create(context.Context, *domain.User) (session.Token, error) {
	return session.Token{}, errors.New("not supported")
}

func (noSessions) Destroy(context.Context, string) error { return nil }

func testDeps(checks map[string]func(context.Context) error) Deps {
	cfg := config.Default()
	cfg.HTTP.GinMode = gin.TestMode
	cfg.Session.Secret = "test"
	return Deps{
		Config:   cfg,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Audit:    logger.NopAudit(),
		Sessions: noSessions{},
		Checks:   checks,
	}
}

func serve(t *testing.T, engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter_Health(t *testing.T) {
	engine, limiter := NewRouter(testDeps(map[string]func(context.Context) error{
		"redis": func(context.Context) error { return nil },
	}))
	require.NotNil(t, limiter)

	w := serve(t, engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","checks":{"redis":"ok"}}`, w.Body.String())
}

func TestNewRouter_HealthFailing(t *testing.T) {
	engine, _ := NewRouter(testDeps(map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))

	w := serve(t, engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestNewRouter_MetricsAndDocs(t *testing.T) {
	engine, _ := NewRouter(testDeps(nil))

	serve(t, engine, http.MethodGet, "/health")
	w := serve(t, engine, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `flightdesk_http_requests_total{code="200",method="GET",route="/health"} 1`)

	w = serve(t, engine, http.MethodGet, "/docs/openapi.json")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_ProtectedRoutesRedirect(t *testing.T) {
	engine, _ := NewRouter(testDeps(nil))

	for _, path := range []string{"/flights", "/reservations/list", "/profile/Admin"} {
		w := serve(t, engine, http.MethodGet, path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/profile/login", w.Header().Get("Location"), path)
	}
}

func TestNewRouter_RateLimitDisabled(t *testing.T) {
	deps := testDeps(nil)
	deps.Config.RateLimit.Enabled = false
	deps.Config.HTTP.SwaggerEnabled = false

	engine, limiter := NewRouter(deps)
	assert.Nil(t, limiter)
	assert.Equal(t, http.StatusNotFound, serve(t, engine, http.MethodGet, "/docs/openapi.json").Code)
}

func TestCorsHandler(t *testing.T) {
	handler := corsHandler([]string{"https://admin.example.com"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/flights", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
