package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.userService.CreateUser(c.UserContext(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	users, err := h.userService.ListUsers(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
