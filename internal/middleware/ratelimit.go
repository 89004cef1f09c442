package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/logger"
	"fittrack/internal/metrics"
	"fittrack/internal/ratelimit"
)

// RateLimit counts every request per client IP under prefix and rejects
// those over the limit with 429 and Retry-After.
func RateLimit(limiter ratelimit.Limiter, prefix string, m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := prefix + c.ClientIP()
		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// A broken limiter must not lock everyone out.
			logger.Get().Warnw("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if !decision.Allowed {
			if m != nil {
				m.CounterRateLimited.Inc()
			}
			abortWithError(c, apperrors.RateLimited(decision.RetryAfter))
			return
		}
		c.Next()
	}
}
