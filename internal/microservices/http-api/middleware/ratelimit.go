package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const TooManyRequestsMessage = "Too many requests"

// RateLimit applies one process-wide token bucket. rps <= 0 disables it.
func RateLimit(rps float64, burst int, log *slog.Logger) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.Debug("rate limit hit",
				"path", c.Request.URL.Path,
				"limit", float64(limiter.Limit()),
				"burst", limiter.Burst(),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": TooManyRequestsMessage})
			return
		}
		c.Next()
	}
}
