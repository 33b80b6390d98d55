package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	apperrors "github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/resilience"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key from a request. Defaults to UserBasedKey.
	KeyFunc func(*gin.Context) string
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// RateLimit returns a Gin middleware that gives each key a token bucket of
// RequestsPerMinute tokens, refilled evenly over a minute.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = UserBasedKey
	}
	limiter := resilience.PerMinute(cfg.RequestsPerMinute, cfg.Now)

	return func(c *gin.Context) {
		if !limiter.Allow(cfg.KeyFunc(c)) {
			abortWithError(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserBasedKey keys on the authenticated user, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if claims, ok := auth.FromContext(c.Request.Context()); ok {
		return "user:" + claims.UserID
	}
	return c.ClientIP()
}
