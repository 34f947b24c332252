package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"estudio/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Redis fixed-window rate limiter ───────────────────────────────────────────
// One counter per (scope, IP, window) shared by every server instance:
//   INCR ratelimit:{scope}:{ip}:{window}  +  EXPIRE on the first hit.
// If Redis is unreachable the request is let through and a warning is logged.

const loginAttemptsPerMinute = 20

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return rateLimit(rdb, "login", loginAttemptsPerMinute, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter returns the general API limiter: limit requests per window per IP.
func RateLimiter(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return rateLimit(rdb, "api", limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.")
}

func rateLimit(rdb *redis.Client, scope string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		now := time.Now()
		slot := now.Truncate(window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.ClientIP(), slot.Unix())

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("rate limiter: redis unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			retryAfter := int(slot.Add(window).Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
