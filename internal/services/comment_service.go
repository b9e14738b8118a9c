package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxCommentLength = 5000

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// AddComment appends a message. Clients may only comment on their own
// projects and can never author internal notes.
func (s *CommentService) AddComment(ctx context.Context, actor auth.Identity, projectID uuid.UUID, message string, isInternal bool) (*models.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message", "is required")
	}
	if len(message) > maxCommentLength {
		return nil, invalid("message", fmt.Sprintf("must be at most %d long", maxCommentLength))
	}

	project, err := findProject(s.db.WithContext(ctx), projectID)
	if err != nil {
		return nil, err
	}
	if err := canAccessProject(actor, project); err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleClient:
		isInternal = false
	default:
		return nil, auth.ErrUnauthenticated
	}

	comment := models.Comment{
		ID:         uuid.New(),
		ProjectID:  projectID,
		UserID:     actor.ID,
		Message:    message,
		IsInternal: isInternal,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	slog.InfoContext(ctx, "comment added", "action", "add_comment", "user_id", actor.ID.String(),
		"project_id", projectID.String(), "internal", isInternal)
	return &comment, nil
}

// ListComments never returns internal comments to non-admin callers.
func (s *CommentService) ListComments(ctx context.Context, actor auth.Identity, projectID uuid.UUID) ([]models.Comment, error) {
	project, err := findProject(s.db.WithContext(ctx), projectID)
	if err != nil {
		return nil, err
	}
	if err := canAccessProject(actor, project); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("project_id = ?", projectID)
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleClient:
		q = q.Where("is_internal = ?", false)
	default:
		return nil, auth.ErrUnauthenticated
	}

	var comments []models.Comment
	if err := q.Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
