package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// writeError maps domain errors to their HTTP form. Anything unrecognised is
// returned to the app's ErrorHandler, which hides the detail.
func writeError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation_error", Message: verr.Error(), Field: verr.Field,
		})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "invalid_status", Message: "Invalid status", Field: "status",
		})
	case errors.Is(err, services.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "invalid_amount", Message: "Amount must be a positive monetary value", Field: "amount",
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Code: "invalid_credentials", Message: "Invalid username or password",
		})
	case errors.Is(err, auth.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Code: "unauthenticated", Message: "Unauthorized",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Code: "forbidden", Message: "Insufficient privileges",
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Code: "not_found", Message: capitalize(err.Error()),
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Code: "conflict", Message: capitalize(err.Error()),
		})
	}
	return err
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: "validation_error", Message: "Invalid request body",
	})
}

// idParam parses a uuid path parameter. A malformed id cannot name a row, so
// it is reported as not found.
func idParam(c *fiber.Ctx, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
