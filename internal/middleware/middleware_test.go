package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per key")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.POST("/login", NewRateLimiter(ctx, 1, time.Hour).Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestBrotli(t *testing.T) {
	big := strings.Repeat("leaderboard ", 500)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, big, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequireUserJWT(t *testing.T) {
	auth := service.NewAuthService(&config.Config{
		JWTSecret: "s", JWTExpiry: time.Hour, AdminMasterSecret: "m", AdminCodeWindow: 5 * time.Minute,
	}, nil)
	code, _ := auth.CurrentAdminCode()
	adminToken, err := auth.GenerateAdminToken(code)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireUserJWT(auth), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", RequireAdminJWT(auth), func(c *gin.Context) {
		assert.Equal(t, 0, UserID(c))
		c.Status(http.StatusOK)
	})
	r.GET("/maybe", OptionalUserJWT(auth), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", UserID(c))
	})

	cases := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
		code   string
	}{
		{"missing token", "/me", "", "", http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"garbage token", "/me", "Bearer nope", "", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"admin token on member route", "/me", "Bearer " + adminToken, "", http.StatusForbidden, "USER_ACCESS_ONLY"},
		{"admin via header", "/admin", "Bearer " + adminToken, "", http.StatusOK, ""},
		{"admin via cookie", "/admin", "", adminToken, http.StatusOK, ""},
		{"optional anonymous", "/maybe", "", "", http.StatusOK, ""},
		{"optional ignores admin", "/maybe", "Bearer " + adminToken, "", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.code != "" {
				assert.Contains(t, w.Body.String(), tc.code)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/public", CacheControl(60), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/private", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
}
