package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authdomain "kudos/backend/internal/domain/auth"
	"kudos/backend/internal/session"

	"go.uber.org/zap"
)

type ctxKeyIdentity struct{}

// withCORS echoes explicitly listed origins and allows them to send cookies.
// A "*" entry only yields a literal wildcard without credentials.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
			case isOriginListed(origin, allowedOrigins):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			case hasWildcard(allowedOrigins):
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isOriginListed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate != "*" && strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

func hasWildcard(allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" {
			return true
		}
	}
	return false
}

// authMiddleware resolves the caller from a bearer token or, failing that,
// from the session cookie. Rejected cookie sessions get a flash error.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		token := extractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			sess = s.sessions.Get(r)
			token = sess.Token
		}
		if token == "" {
			s.rejectUnauthorized(w, sess)
			return
		}

		identity, err := s.auth.Authorize(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, authdomain.ErrTokenInvalid), errors.Is(err, authdomain.ErrUserNotFound):
				s.rejectUnauthorized(w, sess)
			default:
				s.internalError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyIdentity{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) rejectUnauthorized(w http.ResponseWriter, sess *session.Session) {
	if sess != nil {
		sess.Token = ""
		sess.Flash = msgUnauthorized
		if err := s.sessions.Commit(w, sess); err != nil {
			s.logger.Warn("commit session", zap.Error(err))
		}
	}
	writeError(w, http.StatusUnauthorized, msgUnauthorized)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func identityFromContext(ctx context.Context) (*authdomain.Identity, bool) {
	identity, ok := ctx.Value(ctxKeyIdentity{}).(*authdomain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
