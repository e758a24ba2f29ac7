package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 64

var (
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes")
	ErrTokenExpired       = errors.New("access token has expired")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrInvalidSubject     = errors.New("token subject needs a user id and a role")
)

// JWT issues and checks the bearer tokens returned by OTP verification and
// administrator login.
type JWT interface {
	Generate(in Subject) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	// UUID generates the jti claim.
	UUID generator
}

// Subject is the user a token is issued for.
type Subject struct {
	UserID string
	Role   string
	Phone  string
}

// Claims is the decoded access token. Subject and UserID carry the same value.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	// Role is the authenticated user role, used as the authorization subject.
	Role string `json:"role"`
	// Phone is the canonical phone number the user signed in with, if any.
	Phone string `json:"phone,omitempty"`
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
