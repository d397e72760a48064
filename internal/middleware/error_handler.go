package middleware

import (
	"net/http"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/apierror"
	"github.com/gdsanger/KManager-sub000/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorHandler turns errors attached with c.Error into a 500 unless a handler
// already wrote a response. Details stay in the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		l := requestLogger(c)
		for _, e := range c.Errors {
			l.Error().Err(e.Err).Str("path", c.FullPath()).Msg("request error")
		}
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal())
		}
	}
}

// Recovery converts panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				l := requestLogger(c)
				l.Error().
					Interface("panic", r).
					Str("path", c.FullPath()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal())
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx are logged as errors, 4xx as
// warnings, the rest as info; the actor is added once authentication ran.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		l := requestLogger(c)
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		if claims := ClaimsFrom(c); claims != nil {
			ev = ev.Str("actor", claims.Actor())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func requestLogger(c *gin.Context) zerolog.Logger {
	return logger.WithRequestID(c.GetString(RequestIDKey))
}
