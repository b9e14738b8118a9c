package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PageHandler serves JSON page descriptors; rendering happens client-side.
type PageHandler struct {
	projectService *services.ProjectService
	userService    *services.UserService
}

func NewPageHandler(projectService *services.ProjectService, userService *services.UserService) *PageHandler {
	return &PageHandler{projectService: projectService, userService: userService}
}

func (h *PageHandler) Home(c *fiber.Ctx) error {
	return c.JSON(h.page(c, "home", nil))
}

func (h *PageHandler) Login(c *fiber.Ctx) error {
	return c.JSON(h.page(c, "login", nil))
}

func (h *PageHandler) Onboarding(c *fiber.Ctx) error {
	return c.JSON(h.page(c, "onboarding", map[string]any{
		"services":    []models.ServiceType{models.ServiceBrand, models.ServiceWeb, models.ServicePrint},
		"clientTypes": []models.ClientType{models.ClientNew, models.ClientExisting},
	}))
}

func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	projects, err := h.projectService.ListProjects(c.UserContext(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.page(c, "dashboard", map[string]any{"projects": projects}))
}

func (h *PageHandler) Admin(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	ctx := c.UserContext()

	projects, err := h.projectService.ListProjects(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}
	users, err := h.userService.ListUsers(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	byStatus := make(map[models.ProjectStatus]int, len(models.ProjectStatuses))
	for _, s := range models.ProjectStatuses {
		byStatus[s] = 0
	}
	for _, p := range projects {
		byStatus[p.Status]++
	}

	clients := 0
	for _, u := range users {
		if u.Role == models.RoleClient {
			clients++
		}
	}

	return c.JSON(h.page(c, "admin", map[string]any{
		"projectCount":     len(projects),
		"projectsByStatus": byStatus,
		"clientCount":      clients,
		"statuses":         models.ProjectStatuses,
	}))
}

func (h *PageHandler) page(c *fiber.Ctx, name string, data map[string]any) dto.PageResponse {
	resp := dto.PageResponse{Page: name, Data: data}
	if id, ok := middleware.IdentityFrom(c); ok {
		u := userResponse(id)
		resp.User = &u
	}
	return resp
}
