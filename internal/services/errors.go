package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	ErrForbidden     = errors.New("insufficient privileges")
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidAmount = errors.New("amount must be a positive monetary value")
	ErrConflict      = errors.New("already exists")

	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrInvoiceNotFound = fmt.Errorf("invoice %w", ErrNotFound)
	ErrUsernameTaken   = fmt.Errorf("username %w", ErrConflict)
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct tags and reports the first failing field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return invalid(fe.Field(), describe(fe))
	}
	return err
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}

// requireAdmin gates admin-only mutations. A zero identity is unauthenticated.
func requireAdmin(actor auth.Identity) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleClient:
		return ErrForbidden
	default:
		return auth.ErrUnauthenticated
	}
}

// canAccessProject lets admins see every project and clients only their own.
func canAccessProject(actor auth.Identity, project *models.Project) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleClient:
		if project.UserID == actor.ID {
			return nil
		}
		return ErrForbidden
	default:
		return auth.ErrUnauthenticated
	}
}
