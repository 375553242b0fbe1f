package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fet-timetable-api/internal/service"
)

// UnmatchedRoute labels requests that hit no registered route, keeping raw
// URLs with entity names out of the path label.
const UnmatchedRoute = "unmatched"

// Metrics records request duration and count under the route template
// (for example /api/timetable/teacher/:name). Requests to skipped paths,
// typically health checks and /metrics itself, are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = UnmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
