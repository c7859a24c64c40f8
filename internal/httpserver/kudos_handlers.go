package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	authdomain "kudos/backend/internal/domain/auth"
	kudosdomain "kudos/backend/internal/domain/kudos"
	kudosusecase "kudos/backend/internal/usecase/kudos"
)

func (s *Server) handlePostKudos(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var payload kudosusecase.PostInput
	if err := bindInput(r, &payload, func(form url.Values) {
		payload.ReceiverProfileID = form.Get("receiver")
		payload.Emoji = form.Get("emoji")
		payload.Message = form.Get("message")
		payload.BackgroundColor = form.Get("backgroundColor")
		payload.TextColor = form.Get("textColor")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	k, err := s.kudos.Post(r.Context(), identity.ProfileID, payload)
	if err != nil {
		switch {
		case errors.Is(err, kudosdomain.ErrReceiverNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, kudosdomain.ErrSelfKudos),
			errors.Is(err, kudosdomain.ErrInvalidColor),
			errors.Is(err, authdomain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"kudos": k})
}

// handleChat assembles the home screen: the caller's profile, everyone else,
// the kudos they received and the latest kudos across the app.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	ctx := r.Context()
	query := r.URL.Query()

	self, err := s.profiles.Get(ctx, identity.ProfileID)
	if err != nil {
		s.writeProfileError(w, r, err)
		return
	}
	users, err := s.profiles.ListOthers(ctx, identity.ProfileID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	received, err := s.kudos.ListReceived(ctx, identity.ProfileID, kudosusecase.ListInput{
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	recent, err := s.kudos.ListRecent(ctx, 0)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"self":        self,
		"users":       nonNil(users),
		"kudos":       nonNil(received),
		"recentKudos": nonNil(recent),
	})
}
