package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowStaysUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("1.2.3.4_user")
		require.True(t, ok, "request %d should be allowed", i+1)
	}

	ok, retryAfter := rl.Allow("1.2.3.4_user")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, 0)
}

func TestAllowIsolatesKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	ok, _ := rl.Allow("1.2.3.4_alice")
	require.True(t, ok)

	ok, _ = rl.Allow("1.2.3.4_alice")
	require.False(t, ok)

	// A different user behind the same IP has its own counter.
	ok, _ = rl.Allow("1.2.3.4_bob")
	assert.True(t, ok)
}

func TestAllowRecoversAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)

	ok, _ := rl.Allow("key")
	require.True(t, ok)
	ok, _ = rl.Allow("key")
	require.False(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, _ = rl.Allow("key")
	assert.True(t, ok)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.JSON(200, gin.H{"message": "pong"}) })
	router.POST("/ping", func(c *gin.Context) { c.JSON(200, gin.H{"message": "pong"}) })
	return router
}

func TestMiddlewareReturns429WithRetryAfter(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, time.Minute))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "error")
}

func TestMiddlewareSkipsGETWhenConfigured(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, time.Minute).SkipGET())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Mutations still count against the limit.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
