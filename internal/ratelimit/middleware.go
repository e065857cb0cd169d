package ratelimit

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/errors"
)

// IPRateLimitMiddleware enforces the per-IP quota and sets the standard
// X-RateLimit headers. Rejections are reported through c.Error so the
// error handler renders them.
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := rl.AllowIP(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
			}
			retry := max(int(result.RetryAfter.Seconds()+0.999), 1)
			c.Header("Retry-After", strconv.Itoa(retry))
			_ = c.Error(apperrors.NewRateLimitError(result.RetryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}
