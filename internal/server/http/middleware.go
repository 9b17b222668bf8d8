package httpserver

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/mybook/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Logging logs one line per request and feeds the HTTP metrics.
func Logging(log *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		dur := time.Since(start)

		// metadata only, never bodies
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("dur", dur),
			zap.String("peer", c.ClientIP()),
		)
		m.ObserveHTTP(c.Request.Method, route, status, dur)
	}
}

// Recover turns a handler panic into a 500.
func Recover(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("route", c.FullPath()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errorBody{Message: "internal server error", Code: "internal_error"})
			}
		}()
		c.Next()
	}
}
