package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edricrolandli/cssc-api/internal/service"
)

// Metrics observes method, route, status, and latency for every request.
// Unmatched routes fall back to the raw path so 404 traffic stays visible.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
