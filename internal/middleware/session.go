package middleware

import (
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionLoader resolves the session cookie (or a bearer header) into an
// identity. A missing or bad token is not an error here; the gate decides.
func SessionLoader(issuer *auth.SessionIssuer, cookieName string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:     issuer.Keyfunc,
		Claims:      &auth.Claims{},
		TokenLookup: "cookie:" + cookieName + ",header:Authorization",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals("user").(*jwt.Token)
			if id, err := auth.IdentityFromToken(token); err == nil {
				c.Locals(identityKey, id)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	})
}
