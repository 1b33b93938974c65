package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-eval/cmd/api/auth"
	"model-eval/ratelimit"
	"model-eval/trace"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":       auth.UserID(c),
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
		})
	})
	return r
}

func serve(r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestTraceKeepsIncomingRequestID(t *testing.T) {
	r := newEngine(RequestTrace(), RequestLogging())

	rec := serve(r, map[string]string{trace.HeaderRequestID: "req-123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(trace.HeaderRequestID))
	assert.Equal(t, "0", rec.Header().Get(trace.HeaderSpanID))
	assert.Contains(t, rec.Body.String(), `"request_id":"req-123"`)

	rec = serve(r, nil)
	assert.Len(t, rec.Header().Get(trace.HeaderRequestID), 32)
}

func TestRequireAuth(t *testing.T) {
	r := newEngine(RequireAuth(auth.NewAuthenticator(nil, true)))

	assert.Equal(t, http.StatusUnauthorized, serve(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, map[string]string{"Authorization": "Token abc"}).Code)

	rec := serve(r, map[string]string{"Authorization": "Bearer dev-token-local"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"dev-user-id"`)
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	r := newEngine(RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute)))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	}
	rec := serve(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newEngine(RateLimit(brokenLimiter{}))
	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
}

func TestRateLimitNoopSetsNoHeaders(t *testing.T) {
	r := newEngine(RateLimit(ratelimit.NewNoopLimiter()))
	rec := serve(r, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
