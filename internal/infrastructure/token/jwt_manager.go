package token

import (
	"errors"
	"time"

	domain "kudos/backend/internal/domain/auth"
	usecase "kudos/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and validates HS256 tokens with a fixed lifetime.
type JWTManager struct {
	secret  []byte
	issuer  string
	nowFunc func() time.Time
}

// Option customises a JWTManager.
type Option func(*JWTManager)

// WithNowFunc replaces the clock used for issuance and expiry checks.
func WithNowFunc(now func() time.Time) Option {
	return func(m *JWTManager) {
		m.nowFunc = now
	}
}

// NewJWTManager constructs a manager with the provided secret. An empty secret
// is a configuration fault.
func NewJWTManager(secret, issuer string, opts ...Option) (*JWTManager, error) {
	if secret == "" {
		return nil, domain.ErrSigningSecretMissing
	}
	m := &JWTManager{
		secret:  []byte(secret),
		issuer:  issuer,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Ensure JWTManager implements the TokenManager interface.
var _ usecase.TokenManager = (*JWTManager)(nil)

// Claims represents token claims.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Generate creates a signed JWT for the given email.
func (m *JWTManager) Generate(email string) (string, error) {
	now := m.nowFunc().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(usecase.TokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate checks signature, expiry and issuer. Every failure collapses into
// domain.ErrTokenInvalid.
func (m *JWTManager) Validate(tokenString string) (*usecase.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	// Access tokens are minted without an audience; anything else was issued
	// for another purpose.
	if len(claims.Audience) > 0 {
		return nil, domain.ErrTokenInvalid
	}

	email := subjectOf(claims)
	if email == "" {
		return nil, domain.ErrTokenInvalid
	}

	out := &usecase.Claims{Email: email, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// ExtractEmail returns the subject email without verifying the signature or
// expiry. Callers must have validated the token beforehand.
func (m *JWTManager) ExtractEmail(tokenString string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", domain.ErrTokenInvalid
	}
	email := subjectOf(claims)
	if email == "" {
		return "", domain.ErrTokenInvalid
	}
	return email, nil
}

func subjectOf(c *Claims) string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}
