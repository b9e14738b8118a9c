package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// numeric(12,2) upper bound
const maxInvoiceAmount = 9_999_999_999.99

type CreateInvoiceInput struct {
	ProjectID uuid.UUID `json:"projectId"`
	Amount    float64   `json:"amount"`
	Notes     string    `json:"notes" validate:"max=5000"`
	FileURL   *string   `json:"fileUrl" validate:"omitempty,url,max=2048"`
}

type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, actor auth.Identity, in CreateInvoiceInput) (*models.Invoice, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.ProjectID == uuid.Nil {
		return nil, invalid("projectId", "is required")
	}
	amount, err := normalizeAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := findProject(s.db.WithContext(ctx), in.ProjectID); err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		Amount:    amount,
		Status:    models.InvoiceDraft,
		FileURL:   in.FileURL,
		Notes:     in.Notes,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	slog.InfoContext(ctx, "invoice created", "action", "create_invoice", "user_id", actor.ID.String(),
		"project_id", in.ProjectID.String(), "invoice_id", invoice.ID.String(), "amount", amount)
	return &invoice, nil
}

// ListInvoices lists one project's invoices, or every invoice visible to actor
// when projectID is nil.
func (s *InvoiceService) ListInvoices(ctx context.Context, actor auth.Identity, projectID *uuid.UUID) ([]models.Invoice, error) {
	db := s.db.WithContext(ctx)
	q := db.Order("created_at DESC")

	if projectID != nil {
		project, err := findProject(db, *projectID)
		if err != nil {
			return nil, err
		}
		if err := canAccessProject(actor, project); err != nil {
			return nil, err
		}
		q = q.Where("project_id = ?", *projectID)
	} else {
		switch actor.Role {
		case models.RoleAdmin:
		case models.RoleClient:
			q = q.Where("project_id IN (?)", db.Model(&models.Project{}).Select("id").Where("user_id = ?", actor.ID))
		default:
			return nil, auth.ErrUnauthenticated
		}
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, actor auth.Identity, invoiceID uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("status", "must be one of: draft sent paid")
	}

	db := s.db.WithContext(ctx)
	var invoice models.Invoice
	if err := db.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	now := time.Now().UTC()
	if err := db.Model(&models.Invoice{}).Where("id = ?", invoiceID).
		Updates(map[string]interface{}{"status": status, "updated_at": now}).Error; err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	invoice.Status = status
	invoice.UpdatedAt = now

	slog.InfoContext(ctx, "invoice status changed", "action", "update_invoice", "user_id", actor.ID.String(),
		"invoice_id", invoiceID.String(), "status", string(status))
	return &invoice, nil
}

// normalizeAmount rejects non-positive or non-finite values and rounds to cents.
func normalizeAmount(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	rounded := math.Round(amount*100) / 100
	if rounded <= 0 || rounded > maxInvoiceAmount {
		return 0, ErrInvalidAmount
	}
	return rounded, nil
}
