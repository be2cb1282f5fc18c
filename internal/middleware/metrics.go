package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request count, latency and in-flight requests. Requests
// are labelled by route template, never by raw path; requests that match no
// route share the "unmatched" label.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncInFlight()
		defer m.DecInFlight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
