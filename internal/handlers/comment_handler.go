package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Add(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	projectID, err := idParam(c, "id", services.ErrProjectNotFound)
	if err != nil {
		return writeError(c, err)
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	comment, err := h.commentService.AddComment(c.UserContext(), actor, projectID, req.Message, req.IsInternal)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CommentEnvelope{Comment: comment})
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	projectID, err := idParam(c, "id", services.ErrProjectNotFound)
	if err != nil {
		return writeError(c, err)
	}

	comments, err := h.commentService.ListComments(c.UserContext(), actor, projectID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}
