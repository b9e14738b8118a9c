package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Username string      `json:"username" validate:"required,min=3,max=64"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser provisions an account. Role defaults to client.
func (s *UserService) CreateUser(ctx context.Context, actor auth.Identity, in CreateUserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	if !in.Role.Valid() {
		return nil, invalid("role", "must be one of: admin client")
	}

	user, err := s.create(ctx, in.Username, in.Password, in.Role)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user created", "action", "create_user", "user_id", actor.ID.String(),
		"created_user_id", user.ID.String(), "role", string(user.Role))
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor auth.Identity) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap admin unless the username already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.create(ctx, username, password, models.RoleAdmin); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *UserService) create(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Password: hash,
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}
