package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/adaptutor/internal/metrics"
)

// observe records request metrics and a debug log line per request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		d := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, route, status, d)

		kv := []any{"method", c.Request.Method, "route", route, "status", status, "latency", d}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.String())
		}
		if status >= 500 {
			s.log.Warn("request failed", kv...)
			return
		}
		s.log.Debug("request served", kv...)
	}
}
