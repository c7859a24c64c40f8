package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	domain "kudos/backend/internal/domain/auth"

	"github.com/google/uuid"
)

const minCredentialLength = 3

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(encoded, plaintext string) (bool, error)
}

// Service coordinates the credential store and token issuance.
type Service struct {
	users   domain.UserRepository
	hasher  PasswordHasher
	tokens  TokenManager
	nowFunc func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, hasher PasswordHasher, tokens TokenManager) *Service {
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		nowFunc: time.Now,
	}
}

// RegisterInput is the payload of CreateAccount.
type RegisterInput struct {
	Email    string
	Password string
	Profile  domain.ProfileFields
}

// VerifyCredentials reports whether password matches the credential stored
// for email. Unknown emails yield false without an error.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return false, fmt.Errorf("verify password hash: %w", err)
	}
	return ok, nil
}

// CreateAccount hashes the password and persists the user and its profile in a
// single transaction. A duplicate email yields domain.ErrEmailExists.
func (s *Service) CreateAccount(ctx context.Context, input RegisterInput) (*domain.Identity, error) {
	email := strings.TrimSpace(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(input.Password) < minCredentialLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minCredentialLength)
	}
	if input.Profile.BirthDate.IsZero() {
		return nil, fmt.Errorf("%w: birthday is required", domain.ErrValidation)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFunc().UTC()
	profile := &domain.Profile{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(input.Profile.FirstName),
		LastName:  strings.TrimSpace(input.Profile.LastName),
		BirthDate: input.Profile.BirthDate.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		ProfileID:    profile.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, err
	}

	return &domain.Identity{User: *sanitizeUser(user), Profile: profile}, nil
}

// Login verifies the credentials and issues a token.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if s.tokens == nil {
		return "", domain.ErrSigningSecretMissing
	}

	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return "", domain.ErrInvalidCredentials
	}

	ok, err := s.VerifyCredentials(ctx, email, creds.Password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	return s.tokens.Generate(email)
}

// Validate checks the token signature and expiry without touching storage.
func (s *Service) Validate(token string) (*Claims, error) {
	if s.tokens == nil {
		return nil, domain.ErrSigningSecretMissing
	}
	return s.tokens.Validate(token)
}

// ResolveIdentity loads the account the token refers to. The signature is not
// re-checked, so callers run Validate first. A token for a deleted account
// yields domain.ErrUserNotFound.
func (s *Service) ResolveIdentity(ctx context.Context, token string, includeProfile bool) (*domain.Identity, error) {
	if s.tokens == nil {
		return nil, domain.ErrSigningSecretMissing
	}
	email, err := s.tokens.ExtractEmail(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	identity, err := s.users.GetIdentityByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	out := &domain.Identity{User: *sanitizeUser(&identity.User)}
	if includeProfile {
		out.Profile = identity.Profile
	}
	return out, nil
}

// Authorize runs Validate followed by ResolveIdentity with the profile.
func (s *Service) Authorize(ctx context.Context, token string) (*domain.Identity, error) {
	if _, err := s.Validate(token); err != nil {
		return nil, err
	}
	return s.ResolveIdentity(ctx, token, true)
}

func validateEmail(email string) error {
	if len(email) < minCredentialLength {
		return fmt.Errorf("%w: email must be at least %d characters", domain.ErrValidation, minCredentialLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", domain.ErrValidation)
	}
	return nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
