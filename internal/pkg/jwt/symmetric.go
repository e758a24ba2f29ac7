package jwt

import (
	"errors"
	"fmt"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric signs and verifies access tokens with a shared HS512 secret. All
// time checks use the injected clock.
type Symmetric struct {
	secret    []byte
	issuer    string
	audiences []string
	ttl       time.Duration
	clock     clocker
	uuid      generator
}

func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		audiences: cfg.Audiences,
		ttl:       cfg.TTL,
		clock:     cfg.Clock,
		uuid:      cfg.UUID,
	}, nil
}

// Generate issues a token for the subject. UserID and Role are mandatory.
func (s *Symmetric) Generate(in Subject) (string, error) {
	if in.UserID == "" || in.Role == "" {
		return "", ErrInvalidSubject
	}
	now := s.clock.Now()

	return libJWT.
		NewWithClaims(libJWT.SigningMethodHS512, Claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				ID:        s.uuid.Generate(),
				Subject:   in.UserID,
				Issuer:    s.issuer,
				Audience:  s.audiences,
				IssuedAt:  libJWT.NewNumericDate(now),
				NotBefore: libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
			},
			UserID: in.UserID,
			Role:   in.Role,
			Phone:  in.Phone,
		}).
		SignedString(s.secret)
}

// TTL returns how long generated tokens stay valid.
func (s *Symmetric) TTL() time.Duration {
	return s.ttl
}

// Verify returns ErrTokenExpired for an expired token and ErrInvalidToken
// for anything else that fails validation.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(*libJWT.Token) (any, error) { return s.secret, nil },
		libJWT.WithIssuer(s.issuer),
		libJWT.WithAudience(s.audiences...),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.clock.Now),
	)
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case !token.Valid, claims.UserID == "", claims.Role == "":
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
