package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/pkg/clock"
)

type staticID struct{ id string }

func (s staticID) Generate() string { return s.id }

func newTestJWT(t *testing.T, c clocker) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "easymed",
		Audiences: []string{"easymed-web"},
		TTL:       15 * time.Minute,
		Clock:     c,
		UUID:      staticID{id: "jti-1"},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return j
}

func TestNewHS512_ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})

	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	// Arrange
	j := newTestJWT(t, clock.New())

	// Act
	token, err := j.Generate(Subject{UserID: "u-1", Role: "patient", Phone: "+919876543210"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err := j.Verify(token)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "patient" || claims.Phone != "+919876543210" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "u-1" || claims.ID != "jti-1" {
		t.Fatalf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
}

func TestSymmetric_VerifyExpired(t *testing.T) {
	c := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	j := newTestJWT(t, c)

	token, err := j.Generate(Subject{UserID: "u-1", Role: "admin"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := j.Verify(token); err != nil {
		t.Fatalf("Verify() before expiry error = %v", err)
	}

	c.Advance(16 * time.Minute)

	if _, err := j.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestSymmetric_VerifyTampered(t *testing.T) {
	j := newTestJWT(t, clock.New())

	token, err := j.Generate(Subject{UserID: "u-1", Role: "patient"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := j.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSymmetric_VerifyOtherAudience(t *testing.T) {
	issuer := newTestJWT(t, clock.New())
	token, err := issuer.Generate(Subject{UserID: "u-1", Role: "patient"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	other, err := NewHS512(Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "easymed",
		Audiences: []string{"easymed-admin"},
		TTL:       time.Minute,
		Clock:     clock.New(),
		UUID:      staticID{id: "jti-2"},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSymmetric_GenerateRequiresSubject(t *testing.T) {
	j := newTestJWT(t, clock.New())

	tests := []Subject{{Role: "patient"}, {UserID: "u-1"}}
	for _, in := range tests {
		if _, err := j.Generate(in); !errors.Is(err, ErrInvalidSubject) {
			t.Fatalf("Generate(%+v) error = %v, want ErrInvalidSubject", in, err)
		}
	}
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()
	if GetAuth(ctx) != nil {
		t.Fatalf("expected nil claims on empty context")
	}

	ctx = SetAuth(ctx, Claims{UserID: "u-1", Role: "doctor"})

	clm := GetAuth(ctx)
	if clm == nil || clm.UserID != "u-1" || clm.Role != "doctor" {
		t.Fatalf("unexpected claims: %+v", clm)
	}
}
