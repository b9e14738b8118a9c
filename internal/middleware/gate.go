package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

const (
	LoginPage   = "/login"
	LandingPage = "/dashboard"
)

type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAuthenticated
	RouteAdminOnly
)

func (rc RouteClass) String() string {
	switch rc {
	case RoutePublic:
		return "public"
	case RouteAdminOnly:
		return "adminOnly"
	default:
		return "authenticated"
	}
}

// ClassifyFunc maps a request to its route class. It must not look at
// anything but method and path.
type ClassifyFunc func(method, path string) RouteClass

type Outcome int

const (
	Allow Outcome = iota
	DenyUnauthenticated
	RedirectLanding
	DenyForbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case RedirectLanding:
		return "redirect"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decide applies the gate rules in order. A nil identity means no valid session.
func Decide(class RouteClass, id *auth.Identity, path string) Outcome {
	if id == nil {
		if class == RoutePublic {
			return Allow
		}
		return DenyUnauthenticated
	}
	if isLoginEntry(path) {
		return RedirectLanding
	}
	if class == RouteAdminOnly {
		switch id.Role {
		case models.RoleAdmin:
			return Allow
		case models.RoleClient:
			return DenyForbidden
		default:
			return DenyUnauthenticated
		}
	}
	return Allow
}

func isLoginEntry(path string) bool {
	path = strings.ToLower(strings.TrimSuffix(path, "/"))
	return path == LoginPage || path == "/api/auth/login"
}

func isAPI(path string) bool {
	path = strings.ToLower(path)
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// AccessGate enforces Decide for every request. It expects SessionLoader to
// have run first.
func AccessGate(classify ClassifyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		class := classify(c.Method(), path)

		var id *auth.Identity
		if resolved, ok := IdentityFrom(c); ok {
			id = &resolved
		}

		outcome := Decide(class, id, path)
		metrics.GateDecisions.WithLabelValues(class.String(), outcome.String()).Inc()

		switch outcome {
		case Allow:
			return c.Next()
		case RedirectLanding:
			return c.Redirect(LandingPage, fiber.StatusSeeOther)
		case DenyForbidden:
			if isAPI(path) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Code: "forbidden", Message: "Admin access required",
				})
			}
			return c.Redirect(LandingPage, fiber.StatusSeeOther)
		default:
			if isAPI(path) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Code: "unauthenticated", Message: "Unauthorized",
				})
			}
			return c.Redirect(LoginPage, fiber.StatusSeeOther)
		}
	}
}

// IdentityFrom returns the identity resolved for this request, if any.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(identityKey).(auth.Identity)
	return id, ok
}
