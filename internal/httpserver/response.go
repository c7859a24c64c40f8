package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
)

const (
	msgUnauthorized = "unauthorized access"
	msgInternal     = "internal server error"

	maxFormMemory = 1 << 20
)

var errInvalidPayload = errors.New("invalid request payload")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// bindInput decodes a JSON body into dst, or hands the parsed form to
// fromForm when the request was submitted as an HTML form.
func bindInput(r *http.Request, dst any, fromForm func(url.Values)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return errInvalidPayload
		}
		fromForm(r.PostForm)
		return nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return errInvalidPayload
		}
		fromForm(r.PostForm)
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidPayload
	}
	return nil
}

// formValue returns a pointer to the first value of key, or nil when the
// field was not submitted.
func formValue(form url.Values, key string) *string {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
