package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/database"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateProjectInput struct {
	UserID       uuid.UUID            `json:"userId"`
	Status       models.ProjectStatus `json:"status"`
	Service      models.ServiceType   `json:"service" validate:"omitempty,oneof=brand web print"`
	ClientType   models.ClientType    `json:"clientType" validate:"omitempty,oneof=new existing"`
	StyleTags    []string             `json:"styleTags" validate:"max=20,dive,max=64"`
	Colors       []string             `json:"colors" validate:"max=12,dive,hexcolor"`
	Items        []string             `json:"items" validate:"max=50,dive,max=128"`
	Links        []string             `json:"links" validate:"max=20,dive,omitempty,url"`
	Notes        string               `json:"notes" validate:"max=10000"`
	ContactName  string               `json:"contactName" validate:"max=255"`
	ContactEmail string               `json:"contactEmail" validate:"omitempty,email,max=255"`
	ContactPhone string               `json:"contactPhone" validate:"max=64"`
}

// ProjectService owns project status. Transitions are unordered: any member
// of the closed set may follow any other, including itself.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) CreateProject(ctx context.Context, actor auth.Identity, in CreateProjectInput) (*models.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.UserID == uuid.Nil {
		return nil, invalid("userId", "is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusBrief
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	project := models.Project{
		ID:           uuid.New(),
		UserID:       in.UserID,
		Status:       status,
		Service:      in.Service,
		ClientType:   in.ClientType,
		StyleTags:    jsonList(in.StyleTags),
		Colors:       jsonList(in.Colors),
		Items:        jsonList(in.Items),
		Links:        jsonList(in.Links),
		Notes:        in.Notes,
		ContactName:  in.ContactName,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
	}

	err := database.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var owner models.User
			if err := tx.First(&owner, "id = ?", in.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}
			if owner.Role != models.RoleClient {
				return invalid("userId", "project owner must be a client")
			}

			if err := tx.Omit(clause.Associations).Create(&project).Error; err != nil {
				return err
			}
			return tx.Omit(clause.Associations).Create(&models.ProjectStatusHistory{
				ID:        uuid.New(),
				ProjectID: project.ID,
				Sequence:  1,
				ToStatus:  status,
				ChangedBy: actor.ID,
			}).Error
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "project created", "action", "create_project", "user_id", actor.ID.String(),
		"project_id", project.ID.String(), "owner_id", project.UserID.String(), "status", string(status))
	return &project, nil
}

// ChangeStatus moves a project to newStatus and appends the matching audit
// row in the same transaction.
func (s *ProjectService) ChangeStatus(ctx context.Context, actor auth.Identity, projectID uuid.UUID, newStatus models.ProjectStatus) (*models.Project, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var project models.Project
	var prior models.ProjectStatus
	err := database.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lockProject(tx, projectID, &project); err != nil {
				return err
			}
			prior = project.Status

			var lastSeq int
			if err := tx.Model(&models.ProjectStatusHistory{}).
				Where("project_id = ?", projectID).
				Select("COALESCE(MAX(sequence), 0)").
				Row().Scan(&lastSeq); err != nil {
				return err
			}

			now := time.Now().UTC()
			if err := tx.Model(&models.Project{}).Where("id = ?", projectID).
				Updates(map[string]interface{}{"status": newStatus, "updated_at": now}).Error; err != nil {
				return err
			}
			project.Status = newStatus
			project.UpdatedAt = now

			from := prior
			return tx.Omit(clause.Associations).Create(&models.ProjectStatusHistory{
				ID:         uuid.New(),
				ProjectID:  projectID,
				Sequence:   lastSeq + 1,
				FromStatus: &from,
				ToStatus:   newStatus,
				ChangedBy:  actor.ID,
			}).Error
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(prior), string(newStatus)).Inc()
	slog.InfoContext(ctx, "project status changed", "action", "change_status", "user_id", actor.ID.String(),
		"project_id", projectID.String(), "from", string(prior), "to", string(newStatus))
	return &project, nil
}

// DeleteProject removes the project and every dependent row atomically.
func (s *ProjectService) DeleteProject(ctx context.Context, actor auth.Identity, projectID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := database.WithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var project models.Project
			if err := lockProject(tx, projectID, &project); err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectStatusHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", projectID).Delete(&models.Invoice{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Project{}, "id = ?", projectID).Error
		})
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "project deleted", "action", "delete_project", "user_id", actor.ID.String(),
		"project_id", projectID.String())
	return nil
}

func (s *ProjectService) GetProject(ctx context.Context, actor auth.Identity, projectID uuid.UUID) (*models.Project, error) {
	project, err := findProject(s.db.WithContext(ctx), projectID)
	if err != nil {
		return nil, err
	}
	if err := canAccessProject(actor, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns every project to admins and only owned ones to clients.
func (s *ProjectService) ListProjects(ctx context.Context, actor auth.Identity) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleClient:
		q = q.Where("user_id = ?", actor.ID)
	default:
		return nil, auth.ErrUnauthenticated
	}

	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// History returns the audit trail in the order transitions were applied.
func (s *ProjectService) History(ctx context.Context, actor auth.Identity, projectID uuid.UUID) ([]models.ProjectStatusHistory, error) {
	if _, err := s.GetProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	var rows []models.ProjectStatusHistory
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return rows, nil
}

func findProject(db *gorm.DB, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &project, nil
}

// lockProject loads the row and, on PostgreSQL, holds it until commit so
// concurrent transitions on one project serialize.
func lockProject(tx *gorm.DB, projectID uuid.UUID, dest *models.Project) error {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(dest, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}

func jsonList(in []string) datatypes.JSONSlice[string] {
	if in == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in)
}
