package auth

import "time"

// TokenLifetime is the fixed validity window of an issued token.
const TokenLifetime = 24 * time.Hour

// Claims is the verified content of a token.
type Claims struct {
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenManager abstracts token issuance and verification.
type TokenManager interface {
	Generate(email string) (string, error)
	Validate(token string) (*Claims, error)
	// ExtractEmail decodes the subject without checking the signature.
	ExtractEmail(token string) (string, error)
}
