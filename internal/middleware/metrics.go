package middleware

import (
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records request latency labelled by the matched route pattern.
func RequestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil {
			route = r.Path
		}
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
