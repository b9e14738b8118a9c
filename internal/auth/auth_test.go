package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestCredentialVerifier(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := models.User{ID: uuid.New(), Username: "alice", Password: hash, Role: models.RoleClient}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	verifier := NewCredentialVerifier(db)

	t.Run("valid credentials return identity", func(t *testing.T) {
		id, err := verifier.Verify(ctx, "alice", "s3cret-pass")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if id.ID != user.ID || id.Username != "alice" || id.Role != models.RoleClient {
			t.Errorf("unexpected identity: %+v", id)
		}
	})

	t.Run("wrong password and unknown user share one error", func(t *testing.T) {
		_, errWrong := verifier.Verify(ctx, "alice", "nope")
		_, errUnknown := verifier.Verify(ctx, "bob", "s3cret-pass")
		if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v and %v", errWrong, errUnknown)
		}
		if errWrong.Error() != errUnknown.Error() {
			t.Errorf("errors leak which case occurred: %q vs %q", errWrong, errUnknown)
		}
	})

	t.Run("username match is exact", func(t *testing.T) {
		if _, err := verifier.Verify(ctx, "Alice", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := verifier.Verify(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestSessionRoundTrip(t *testing.T) {
	issuer := NewSessionIssuer("test-secret", time.Hour)
	id := Identity{ID: uuid.New(), Username: "admin", Role: models.RoleAdmin}

	token, expiresAt, err := issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("expiry too early: %v", expiresAt)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != id {
		t.Errorf("Verify = %+v, want %+v", got, id)
	}
}

func TestSessionRejects(t *testing.T) {
	issuer := NewSessionIssuer("test-secret", time.Hour)
	id := Identity{ID: uuid.New(), Username: "alice", Role: models.RoleClient}
	token, _, err := issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	t.Run("empty token", func(t *testing.T) {
		if _, err := issuer.Verify(""); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewSessionIssuer("other-secret", time.Hour)
		if _, err := other.Verify(token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		escalated, _, err := issuer.Issue(Identity{ID: id.ID, Username: id.Username, Role: models.RoleAdmin})
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		parts := strings.Split(token, ".")
		parts[1] = strings.Split(escalated, ".")[1]
		if _, err := issuer.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		past := NewSessionIssuer("test-secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.Issue(id)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, err := issuer.Verify(old); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := &Claims{Username: "x", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to build unsigned token: %v", err)
		}
		if _, err := issuer.Verify(raw); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		bogus, _, err := issuer.Issue(Identity{ID: uuid.New(), Username: "x", Role: models.Role("root")})
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, err := issuer.Verify(bogus); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})
}
