package middleware

import (
	"net/http"
	"time"

	"estudio/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler answers for errors attached with c.Error when the handler
// wrote nothing itself. Typed domain errors keep their status; anything
// else is logged and reported as a bare 500 so store details never leak.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := apierror.FromError(err)
		if status >= http.StatusInternalServerError {
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("route", c.FullPath()).
				Err(err).
				Msg("unhandled error")
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// Recovery turns a panic into a 500. The panic value is logged, never sent.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 4xx log at Warn and 5xx at Error so
// rejected ledger writes stand out from normal traffic.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ev = ev.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start))
		if claims, ok := c.Get(ClaimsKey); ok {
			if jc, ok := claims.(*JWTClaims); ok {
				ev = ev.Str("usuario_id", jc.UserID)
			}
		}
		ev.Msg("request")
	}
}
