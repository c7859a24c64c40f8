package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure. It is returned for unknown
	// emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
	// ErrTokenInvalid means a supplied token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrProfileNotFound indicates a missing profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSigningSecretMissing is a deployment fault: tokens cannot be signed.
	ErrSigningSecretMissing = errors.New("JWT signing secret is not configured")
	// ErrValidation wraps field level input errors.
	ErrValidation = errors.New("validation failed")
)

// BirthDateLayout is the wire format of birth dates.
const BirthDateLayout = "2006-01-02"

// User models the credential persisted in storage.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileID    string    `json:"profileId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the display data of a user.
type Profile struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	BirthDate  time.Time `json:"birthday"`
	PictureRef *string   `json:"pictureRef,omitempty"`
	PictureURL string    `json:"pictureUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Identity is a user together with its optional profile.
type Identity struct {
	User
	Profile *Profile `json:"profile,omitempty"`
}

// ProfileFields carries the profile part of a registration or update.
type ProfileFields struct {
	FirstName string
	LastName  string
	BirthDate time.Time
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}
