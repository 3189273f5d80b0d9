package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig splits the budget between read and write traffic. Every
// mutating command costs a full load-mutate-commit round-trip against the
// store backend, while reads are largely absorbed by the list cache, so
// writes get a much smaller bucket.
type RateLimiterConfig struct {
	ReadRPS    rate.Limit
	ReadBurst  int
	WriteRPS   rate.Limit
	WriteBurst int
}

type RateLimiter struct {
	reads  *rate.Limiter
	writes *rate.Limiter
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		reads:  rate.NewLimiter(config.ReadRPS, config.ReadBurst),
		writes: rate.NewLimiter(config.WriteRPS, config.WriteBurst),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.reads
		if c.Request.Method != http.MethodGet {
			limiter = rl.writes
		}
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
