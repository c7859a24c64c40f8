package httpserver

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	authdomain "kudos/backend/internal/domain/auth"
	profileusecase "kudos/backend/internal/usecase/profile"
)

const pictureField = "picture"

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	profile, err := s.profiles.Get(r.Context(), identity.ProfileID)
	if err != nil {
		s.writeProfileError(w, r, err)
		return
	}
	out := *identity
	out.Profile = profile
	writeJSON(w, http.StatusOK, map[string]any{"user": out})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	profiles, err := s.profiles.ListOthers(r.Context(), identity.ProfileID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": nonNil(profiles)})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var payload struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Birthday  *string `json:"birthday"`
	}
	if err := bindInput(r, &payload, func(form url.Values) {
		payload.FirstName = formValue(form, "firstName")
		payload.LastName = formValue(form, "lastName")
		payload.Birthday = formValue(form, "birthday")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := profileusecase.UpdateInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}
	if payload.Birthday != nil {
		birthDate, err := parseBirthday(*payload.Birthday)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.BirthDate = &birthDate
	}

	profile, err := s.profiles.Update(r.Context(), identity.ProfileID, input)
	if err != nil {
		s.writeProfileError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (s *Server) handleUploadPicture(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	// Multipart framing needs some headroom above the picture itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMaxBytes+maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, profileusecase.ErrPictureTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, errInvalidPayload.Error())
		return
	}
	file, _, err := r.FormFile(pictureField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "picture file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.uploadMaxBytes+1))
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	profile, err := s.profiles.UploadPicture(r.Context(), identity.ProfileID, data)
	if err != nil {
		s.writeProfileError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (s *Server) writeProfileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authdomain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, authdomain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profileusecase.ErrPictureTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, profileusecase.ErrUnsupportedPicture):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, profileusecase.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.internalError(w, r, err)
	}
}
