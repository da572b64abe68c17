package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"repairshop-service/prometheus"
)

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Start timer for request duration
		start := time.Now()

		// Process request
		err := next(c)

		// Calculate request duration
		duration := time.Since(start).Seconds()

		// Get request details
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)

		// Unmatched routes share one label so raw URLs never become
		// label values
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}

		// Record metrics
		prometheus.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

		return err
	}
}
