package httpserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	authdomain "kudos/backend/internal/domain/auth"
	profileusecase "kudos/backend/internal/usecase/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, target, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return authed(req)
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	h.profiles.get = func(_ context.Context, id string) (*authdomain.Profile, error) {
		p := *testIdentity().Profile
		p.PictureURL = "https://s3.test/" + id
		return &p, nil
	}

	rec := h.do(authed(httptest.NewRequest(http.MethodGet, "/protected/me", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	profile := user["profile"].(map[string]any)
	assert.Equal(t, "https://s3.test/p-1", profile["pictureUrl"])
}

func TestListProfiles(t *testing.T) {
	h := newHarness(t)
	var gotSelf string
	h.profiles.listOthers = func(_ context.Context, selfID string) ([]*authdomain.Profile, error) {
		gotSelf = selfID
		return nil, nil
	}

	rec := h.do(authed(httptest.NewRequest(http.MethodGet, "/profiles", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profiles":[]}`, rec.Body.String())
	assert.Equal(t, "p-1", gotSelf)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	var got profileusecase.UpdateInput
	h.profiles.update = func(_ context.Context, id string, input profileusecase.UpdateInput) (*authdomain.Profile, error) {
		got = input
		return &authdomain.Profile{ID: id, FirstName: *input.FirstName}, nil
	}

	rec := h.do(authed(formRequest(http.MethodPut, "/actions/profile", url.Values{
		"firstName": {"Grace"},
		"birthday":  {"1906-12-09"},
	})))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Grace", *got.FirstName)
	assert.Nil(t, got.LastName)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, 1906, got.BirthDate.Year())
}

func TestUpdateProfile_Errors(t *testing.T) {
	h := newHarness(t)
	h.profiles.update = func(context.Context, string, profileusecase.UpdateInput) (*authdomain.Profile, error) {
		return nil, authdomain.ErrProfileNotFound
	}

	rec := h.do(authed(jsonRequest(http.MethodPut, "/actions/profile", map[string]string{"birthday": "nope"})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(authed(jsonRequest(http.MethodPut, "/actions/profile", map[string]string{"lastName": "Hopper"})))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(jsonRequest(http.MethodPut, "/actions/profile", map[string]string{"lastName": "Hopper"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadPicture(t *testing.T) {
	h := newHarness(t)
	var got []byte
	h.profiles.upload = func(_ context.Context, id string, data []byte) (*authdomain.Profile, error) {
		got = data
		key := "profile-pictures/" + id + "/x.png"
		return &authdomain.Profile{ID: id, PictureRef: &key}, nil
	}

	rec := h.do(multipartRequest(t, "/actions/profile/picture", "picture", []byte("\x89PNG\r\n\x1a\npayload")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\npayload"), got)
}

func TestUploadPicture_Errors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		data       []byte
		uploadErr  error
		wantStatus int
	}{
		{"missing file", "other", []byte("x"), nil, http.StatusBadRequest},
		{"unsupported", "picture", []byte("GIF89a"), profileusecase.ErrUnsupportedPicture, http.StatusUnsupportedMediaType},
		{"too large", "picture", bytes.Repeat([]byte("a"), 2048), profileusecase.ErrPictureTooLarge, http.StatusRequestEntityTooLarge},
		{"no storage", "picture", []byte("x"), profileusecase.ErrStorageUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.profiles.upload = func(context.Context, string, []byte) (*authdomain.Profile, error) {
				return nil, tt.uploadErr
			}
			rec := h.do(multipartRequest(t, "/actions/profile/picture", tt.field, tt.data))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
