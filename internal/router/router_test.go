package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/handler"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// newTestRouter wires only what the auth layer touches; requests rejected by
// middleware never reach the nil services.
func newTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	log := zerolog.New(io.Discard)
	cfg := &config.Config{
		GinMode:            gin.TestMode,
		JWTSecret:          "router-test-secret",
		JWTExpiry:          time.Hour,
		AdminMasterSecret:  "router-admin-secret",
		AdminCodeWindow:    5 * time.Minute,
		StarSettleInterval: time.Minute,
	}
	auth := service.NewAuthService(cfg, nil)

	handlers := &Handlers{
		Auth:        handler.NewAuthHandler(auth, nil, time.Hour, false, log),
		Test:        handler.NewTestHandler(nil, nil, nil, log),
		Star:        handler.NewStarHandler(nil, nil, nil, log),
		Leaderboard: handler.NewLeaderboardHandler(nil, nil, log),
		Message:     handler.NewMessageHandler(nil, log),
		Video:       handler.NewVideoHandler(nil, log),
		Admin:       handler.NewAdminHandler(nil, auth, log),
		WS:          handler.NewWSHandler(nil, log, nil),
		System:      handler.NewSystemHandler(nil, nil, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, auth, handlers, cfg, nil, log), auth
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/tests"},
		{http.MethodPost, "/api/v1/tests/00000000-0000-0000-0000-000000000001/submit"},
		{http.MethodGet, "/api/v1/stars"},
		{http.MethodGet, "/api/v1/messages"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/admin/dashboard"},
		{http.MethodPost, "/api/v1/admin/tests"},
		{http.MethodGet, "/ws/v1/messages"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestAdminCodeRoute(t *testing.T) {
	r, auth := newTestRouter(t)

	code, _ := auth.CurrentAdminCode()
	token, err := auth.GenerateAdminToken(code)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/code", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), code)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
}

func TestAdminTokenCannotUseMemberRoutes(t *testing.T) {
	r, auth := newTestRouter(t)

	code, _ := auth.CurrentAdminCode()
	token, _ := auth.GenerateAdminToken(code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
