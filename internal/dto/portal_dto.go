package dto

import "github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"

type StatusRequest struct {
	Status string `json:"status"`
}

type CommentRequest struct {
	Message    string `json:"message"`
	IsInternal bool   `json:"isInternal"`
}

type ProjectEnvelope struct {
	Project *models.Project `json:"project"`
}

type CommentEnvelope struct {
	Comment *models.Comment `json:"comment"`
}

type InvoiceEnvelope struct {
	Invoice *models.Invoice `json:"invoice"`
}

// PageResponse describes a portal page for the front-end renderer.
type PageResponse struct {
	Page string         `json:"page"`
	User *UserResponse  `json:"user,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}
