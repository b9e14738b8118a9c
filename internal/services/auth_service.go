package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/metrics"
)

type LoginResult struct {
	Identity  auth.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService turns verified credentials into a signed session.
type AuthService struct {
	verifier *auth.CredentialVerifier
	issuer   *auth.SessionIssuer
}

func NewAuthService(verifier *auth.CredentialVerifier, issuer *auth.SessionIssuer) *AuthService {
	return &AuthService{verifier: verifier, issuer: issuer}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	id, err := s.verifier.Verify(ctx, username, password)
	metrics.LoginAttempts.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.WarnContext(ctx, "login failed", "action", "login", "username", username)
		}
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(id)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "login succeeded", "action", "login", "user_id", id.ID.String(), "role", string(id.Role))
	return &LoginResult{Identity: id, Token: token, ExpiresAt: expiresAt}, nil
}
