package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	authdomain "kudos/backend/internal/domain/auth"
	authusecase "kudos/backend/internal/usecase/auth"

	"go.uber.org/zap"
)

const minCredentialLength = 3

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := bindInput(r, &payload, func(form url.Values) {
		payload.Email = form.Get("email")
		payload.Username = form.Get("username")
		payload.Password = form.Get("password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" {
		email = strings.TrimSpace(payload.Username)
	}
	if len(email) < minCredentialLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("email must be at least %d characters", minCredentialLength))
		return
	}
	if len(payload.Password) < minCredentialLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minCredentialLength))
		return
	}

	token, err := s.auth.Login(r.Context(), authdomain.Credentials{
		Email:    email,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, authdomain.ErrInvalidCredentials.Error())
		case errors.Is(err, authdomain.ErrSigningSecretMissing):
			s.logger.Error("login without signing secret", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}

	sess := s.sessions.Get(r)
	sess.Token = token
	sess.Flash = ""
	if err := s.sessions.Commit(w, sess); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jwt": token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Birthday  string `json:"birthday"`
	}
	if err := bindInput(r, &payload, func(form url.Values) {
		payload.Email = form.Get("email")
		payload.Password = form.Get("password")
		payload.FirstName = form.Get("firstName")
		payload.LastName = form.Get("lastName")
		payload.Birthday = form.Get("birthday")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthDate, err := parseBirthday(payload.Birthday)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := s.auth.CreateAccount(r.Context(), authusecase.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Profile: authdomain.ProfileFields{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			BirthDate: birthDate,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrEmailExists):
			writeError(w, http.StatusConflict, authdomain.ErrEmailExists.Error())
		case errors.Is(err, authdomain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": identity})
}

// handleSession reports whether the browser session carries a token and
// hands out the pending flash error exactly once.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(r)
	flash := sess.TakeFlash()
	if flash != "" {
		if err := s.sessions.Commit(w, sess); err != nil {
			s.internalError(w, r, err)
			return
		}
	}

	resp := map[string]any{"authenticated": sess.Authenticated(), "error": nil}
	if flash != "" {
		resp["error"] = flash
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogout drops the session cookie. Tokens already handed out stay
// valid until they expire.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.sessions.Destroy(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parseBirthday(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: birthday is required", authdomain.ErrValidation)
	}
	t, err := time.Parse(authdomain.BirthDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birthday must use the YYYY-MM-DD format", authdomain.ErrValidation)
	}
	return t, nil
}
