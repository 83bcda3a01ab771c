package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client IP. Buckets are never
// evicted; the per-entry footprint is small and the server is not exposed
// to the open internet.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &rateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

func (rl *rateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.clients[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[ip] = limiter
	}
	return limiter
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
