package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/metrics"
	"github.com/ErlanBelekov/velora-api/internal/ratelimit"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

// RateLimit caps requests per client IP. If the limiter itself fails the
// request is let through and the failure logged.
func RateLimit(limiter ratelimit.Limiter, resp *response.Writer, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "rate_limit")
	return func(c *gin.Context) {
		key := c.FullPath() + "|" + c.ClientIP()
		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			metrics.RateLimitedTotal.WithLabelValues(c.FullPath()).Inc()
			resp.Error(c, http.StatusTooManyRequests, i18n.RateLimited, nil)
			return
		}
		c.Next()
	}
}
