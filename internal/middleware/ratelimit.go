package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/time/rate"
)

// RateLimitByIP allows burst requests per client IP, refilled once per every.
func RateLimitByIP(every time.Duration, burst int) gin.HandlerFunc {
	return limit.NewRateLimiter(func(c *gin.Context) string {
		return c.ClientIP()
	}, func(c *gin.Context) (*rate.Limiter, time.Duration) {
		// idle limiters expire after an hour
		return rate.NewLimiter(rate.Every(every), burst), time.Hour
	}, func(c *gin.Context) {
		abort(c, http.StatusTooManyRequests, "Too many attempts, try again later")
	})
}
