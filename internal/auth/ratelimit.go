package auth

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles authentication attempts per client IP with a
// sliding window, so credential guessing stays slow regardless of which
// account is targeted.
type RateLimiter struct {
	mu              sync.Mutex
	windows         map[string]*windowRecord
	maxRequests     int
	window          time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

type windowRecord struct {
	count       int
	windowStart time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxRequests     int           // Requests allowed per window (default: 5)
	Window          time.Duration // Sliding window length (default: 15m)
	CleanupInterval time.Duration // How often to drop expired records (default: 5m)
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:     5,
		Window:          15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		windows:         make(map[string]*windowRecord),
		maxRequests:     cfg.MaxRequests,
		window:          cfg.Window,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCleanup)
}

// Allow records a request for key and reports whether it is within the
// limit. When it is not, retryAfter indicates how long until the window
// opens again.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.windows[key]
	if !exists || now.Sub(record.windowStart) > rl.window {
		rl.windows[key] = &windowRecord{count: 1, windowStart: now}
		return true, 0
	}

	if record.count < rl.maxRequests {
		record.count++
		return true, 0
	}

	return false, record.windowStart.Add(rl.window).Sub(now)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, record := range rl.windows {
		if now.Sub(record.windowStart) > rl.window {
			delete(rl.windows, key)
		}
	}
}

// Middleware creates Gin middleware limiting requests per client IP. Apply
// it to the authentication routes.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(c.ClientIP())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many authentication attempts, please try again later.",
			})
			return
		}

		c.Next()
	}
}
