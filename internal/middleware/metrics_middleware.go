package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/rentalhub/internal/metrics"
)

// Metrics records request count and latency per route template.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
