package middleware

import (
	"net/http"

	"bookex/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles per user, or per client IP for anonymous requests.
// A nil limiter disables the check.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := scope + ":ip:" + c.ClientIP()
		if actor := ActorFrom(c); actor.IsAuthenticated() {
			key = scope + ":user:" + actor.UserID
		}
		if !limiter.Allow(c.Request.Context(), key) {
			c.String(http.StatusTooManyRequests, "Too many requests, slow down.")
			c.Abort()
			return
		}
		c.Next()
	}
}
