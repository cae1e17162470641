package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{}) })

	cases := map[string]bool{
		"abc-123":                   true,
		"":                          false,
		"has space":                 false,
		strings.Repeat("x", 65):     false,
		"<script>alert(1)</script>": false,
	}
	for in, kept := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if in != "" {
			req.Header.Set("X-Request-ID", in)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, got)
		if kept {
			assert.Equal(t, in, got)
		} else {
			assert.NotEqual(t, in, got)
		}

		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, got, body.Metadata.RequestID)
	}
}

func TestAccessLogLevels(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLog(zerolog.New(&buf)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrNotFound) })
	r.GET("/boom", func(c *gin.Context) { Fail(c, http.StatusInternalServerError, ErrInternal) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	levels := make([]string, 0, 3)
	for _, l := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &entry))
		levels = append(levels, entry["level"].(string))
		assert.NotEmpty(t, entry["request_id"])
	}
	assert.Equal(t, []string{"info", "warn", "error"}, levels)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}

func TestFailWithMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FailWithMessage(c, http.StatusUnprocessableEntity, ErrAuthoringInvalid, "line 2 must start with \"2.\"", map[string]string{"rule": "sequence"})

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrAuthoringInvalid, body.Error.Code)
	assert.Equal(t, "line 2 must start with \"2.\"", body.Error.Message)
	assert.Equal(t, "sequence", body.Error.Fields["rule"])
}
