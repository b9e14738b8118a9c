package auth

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session payload signed into the cookie.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies stateless session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue returns a signed token for id and its expiry.
func (s *SessionIssuer) Issue(id Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, expiresAt, nil
}

// Keyfunc only accepts HMAC-signed tokens.
func (s *SessionIssuer) Keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

// Verify parses a raw token. Any failure is ErrUnauthenticated.
func (s *SessionIssuer) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, s.Keyfunc,
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return IdentityFromToken(token)
}

// IdentityFromToken converts an already validated token into an Identity.
func IdentityFromToken(token *jwt.Token) (Identity, error) {
	if token == nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unexpected claims type", ErrUnauthenticated)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: malformed subject", ErrUnauthenticated)
	}
	if !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: unknown role", ErrUnauthenticated)
	}
	return Identity{ID: id, Username: claims.Username, Role: claims.Role}, nil
}
