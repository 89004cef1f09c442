package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"fittrack/internal/metrics"
)

// RequestMetrics counts requests and observes their latency per route.
func RequestMetrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"status": status,
		}).Inc()
		m.HistogramRequestDuration.With(prometheus.Labels{
			"route":       route,
			"method":      c.Request.Method,
			"status_code": status,
		}).Observe(time.Since(begin).Seconds())
	}
}
