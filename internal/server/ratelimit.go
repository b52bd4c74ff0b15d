package server

import (
	"net/http"
	"sync"
	"time"

	"groundslot/internal/api"
	"groundslot/internal/auth"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller key.
type RateLimiter struct {
	callers map[string]*caller
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		callers: make(map[string]*caller),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}
}

// Prune forgets callers idle for longer than the limiter ttl.
func (rl *RateLimiter) Prune(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	n := 0
	for key, c := range rl.callers {
		if now.Sub(c.lastSeen) > rl.ttl {
			delete(rl.callers, key)
			n++
		}
	}
	return n
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	c, exists := rl.callers[key]
	if !exists {
		c = &caller{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.callers[key] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// RateLimitMiddleware limits each channel separately. It must run after the
// channel gate; unauthenticated callers fall back to their client IP.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 3*time.Minute)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			limiter.Prune(now)
		}
	}()

	return func(c *gin.Context) {
		key, ok := auth.GetChannelID(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
