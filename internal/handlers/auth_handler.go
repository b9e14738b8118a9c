package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService *services.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService *services.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation_error", Message: "Username and password are required",
		})
	}

	result, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		MaxAge:   int(time.Until(result.ExpiresAt).Seconds()),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(dto.SessionResponse{
		User:      userResponse(result.Identity),
		ExpiresAt: result.ExpiresAt,
	})
}

// Logout is stateless: expiring the cookie is all there is to it.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return writeError(c, auth.ErrUnauthenticated)
	}
	return c.JSON(fiber.Map{"user": userResponse(id)})
}

func userResponse(id auth.Identity) dto.UserResponse {
	return dto.UserResponse{ID: id.ID, Username: id.Username, Role: id.Role}
}
