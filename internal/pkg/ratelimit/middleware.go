package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/promptshare/internal/pkg/response"
)

// Middleware limits requests per client IP
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return CustomKeyMiddleware(limiter, nil)
}

// CustomKeyMiddleware limits requests per key returned by keyFunc, falling back to the client IP
func CustomKeyMiddleware(limiter *RateLimiter, keyFunc func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = keyFunc(c)
		}
		if key == "" {
			key = c.ClientIP()
		}

		allowed := limiter.Allow(key)
		resetTime := limiter.ResetTime(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if !allowed {
			retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			response.ErrorWithDetails(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.", gin.H{
				"retryAfter": strconv.Itoa(retryAfter) + "s",
				"resetTime":  resetTime.Format(time.RFC3339),
				"limit":      limiter.Limit(),
			}, "RATE_LIMITED")
			c.Abort()
			return
		}

		c.Next()
	}
}
