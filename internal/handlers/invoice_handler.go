package handlers

import (
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	var req services.CreateInvoiceInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	invoice, err := h.invoiceService.CreateInvoice(c.UserContext(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InvoiceEnvelope{Invoice: invoice})
}

// List accepts an optional projectId query filter.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)

	var projectID *uuid.UUID
	if raw := c.Query("projectId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return writeError(c, services.ErrProjectNotFound)
		}
		projectID = &id
	}

	invoices, err := h.invoiceService.ListInvoices(c.UserContext(), actor, projectID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}

func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, _ := middleware.IdentityFrom(c)
	id, err := idParam(c, "id", services.ErrInvoiceNotFound)
	if err != nil {
		return writeError(c, err)
	}
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	invoice, err := h.invoiceService.UpdateInvoiceStatus(c.UserContext(), actor, id, models.InvoiceStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InvoiceEnvelope{Invoice: invoice})
}
