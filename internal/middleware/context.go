package middleware

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// RequestContext bounds the context handed to services through
// c.UserContext() and tags it with the request id for logging.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		if rid, ok := c.Locals("requestid").(string); ok {
			ctx = logging.WithRequestID(ctx, rid)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
