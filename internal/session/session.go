// Package session keeps the browser session in a signed cookie. The cookie
// value is an HS256 JWT carrying the access token and a one-shot flash error.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxAge matches the access token lifetime.
const MaxAge = 24 * time.Hour

// Session cookies carry their own issuer and audience so they never pass for
// access tokens, even when both are signed with the same secret.
const (
	Issuer   = "kudos-session"
	Audience = "session"
)

// Session is the client-held session state.
type Session struct {
	Token string
	Flash string
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool { return s.Token != "" }

// TakeFlash returns the flash message and clears it.
func (s *Session) TakeFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

type cookieClaims struct {
	Token string `json:"jwt,omitempty"`
	Error string `json:"error,omitempty"`
	jwt.RegisteredClaims
}

// Store reads and writes session cookies.
type Store struct {
	name    string
	secret  []byte
	secure  bool
	nowFunc func() time.Time
}

// NewStore constructs a cookie store.
func NewStore(name, secret string, secure bool) (*Store, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	return &Store{
		name:    name,
		secret:  []byte(secret),
		secure:  secure,
		nowFunc: time.Now,
	}, nil
}

// Get returns the session attached to r. A missing, tampered or expired
// cookie yields an empty session.
func (s *Store) Get(r *http.Request) *Session {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return &Session{}
	}

	var claims cookieClaims
	_, err = jwt.ParseWithClaims(c.Value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil {
		return &Session{}
	}
	return &Session{Token: claims.Token, Flash: claims.Error}
}

// Commit writes sess to the response.
func (s *Store) Commit(w http.ResponseWriter, sess *Session) error {
	now := s.nowFunc()
	claims := cookieClaims{
		Token: sess.Token,
		Error: sess.Flash,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(MaxAge)),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(value, int(MaxAge/time.Second)))
	return nil
}

// Destroy expires the session cookie.
func (s *Store) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
