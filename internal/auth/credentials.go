package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

// Identity is the verified principal carried by a session.
type Identity struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// HashPassword returns the bcrypt hash stored in users.password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CredentialVerifier checks username/password pairs against stored hashes.
type CredentialVerifier struct {
	db *gorm.DB
}

func NewCredentialVerifier(db *gorm.DB) *CredentialVerifier {
	return &CredentialVerifier{db: db}
}

// Verify never distinguishes an unknown user from a wrong password.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (Identity, error) {
	if username == "" || password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	var user models.User
	if err := v.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}
