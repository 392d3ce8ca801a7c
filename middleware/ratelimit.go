package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding-window counter keyed by client IP plus the
// authenticated user id. Each route group gets its own instance so the
// store can later be swapped for a shared one in a multi-node deployment.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	skipGET  bool
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// SkipGET disables limiting for GET requests, matching the general API
// limiter which only throttles mutations.
func (rl *RateLimiter) SkipGET() *RateLimiter {
	rl.skipGET = true
	return rl
}

// Allow records a request for key and reports whether it stays under the
// limit. When it does not, the second return value is the seconds until
// the oldest counted request leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	// Clean old requests
	requests := rl.requests[key]
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	requests = requests[i:]

	// Check if under limit
	if len(requests) >= rl.limit {
		retryAfter := int(requests[0].Sub(cutoff)/time.Second) + 1
		rl.requests[key] = requests
		return false, retryAfter
	}

	// Add current request
	rl.requests[key] = append(requests, now)
	return true, 0
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.skipGET && c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key := c.ClientIP() + "_anonymous"
		if userID := c.GetString("userId"); userID != "" {
			key = c.ClientIP() + "_" + userID
		}

		ok, retryAfter := rl.Allow(key)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			c.Abort()
			return
		}
		c.Next()
	}
}
