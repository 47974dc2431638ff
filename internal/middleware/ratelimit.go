package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ScottSyms/densitytiles/pkg/response"
)

// RateLimiter is a sliding-window limiter keyed by client IP
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // Maximum requests per window
	window   time.Duration // Time window
	stop     chan struct{}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup removes old entries periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, times := range rl.requests {
				if valid := rl.prune(times, now); len(valid) == 0 {
					delete(rl.requests, ip)
				} else {
					rl.requests[ip] = valid
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// prune drops times older than the window, reusing the backing array
func (rl *RateLimiter) prune(times []time.Time, now time.Time) []time.Time {
	valid := times[:0]
	for _, t := range times {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}
	return valid
}

// Allow checks if a request from the given IP is allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	valid := rl.prune(rl.requests[ip], now)
	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}

	valid = append(valid, now)
	rl.requests[ip] = valid

	return true
}

// RateLimit middleware limits requests per IP. limit <= 0 disables it.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return RateLimitWith(NewRateLimiter(limit, window))
}

// RateLimitWith applies an existing limiter
func RateLimitWith(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.Allow(ip) {
			response.TooManyRequests(c, "Rate limit exceeded. Please try again later.")
			return
		}

		c.Next()
	}
}
