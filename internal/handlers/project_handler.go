package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	var req services.CreateProjectInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	project, err := h.projectService.CreateProject(c.UserContext(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProjectEnvelope{Project: project})
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	projects, err := h.projectService.ListProjects(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	id, err := idParam(c, "id", services.ErrProjectNotFound)
	if err != nil {
		return writeError(c, err)
	}

	project, err := h.projectService.GetProject(c.UserContext(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProjectEnvelope{Project: project})
}

func (h *ProjectHandler) History(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	id, err := idParam(c, "id", services.ErrProjectNotFound)
	if err != nil {
		return writeError(c, err)
	}

	rows, err := h.projectService.History(c.UserContext(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"history": rows})
}

func (h *ProjectHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	id, err := idParam(c, "id", services.ErrProjectNotFound)
	if err != nil {
		return writeError(c, err)
	}
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	project, err := h.projectService.ChangeStatus(c.UserContext(), actor, id, models.ProjectStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProjectEnvelope{Project: project})
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	id, err := idParam(c, "id", services.ErrProjectNotFound)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.projectService.DeleteProject(c.UserContext(), actor, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project deleted"})
}
