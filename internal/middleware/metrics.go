package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/twoschool/twoschool-api/internal/service"
)

// Metrics records per-request duration and count. Unmatched requests are
// bucketed under a single label to keep the path cardinality bounded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
