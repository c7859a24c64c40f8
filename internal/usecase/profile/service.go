package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "kudos/backend/internal/domain/auth"

	"github.com/google/uuid"
)

// ErrUnsupportedPicture rejects uploads that are neither JPEG nor PNG.
var ErrUnsupportedPicture = errors.New("profile picture must be a JPEG or PNG image")

// ErrPictureTooLarge rejects uploads above the configured limit.
var ErrPictureTooLarge = errors.New("profile picture is too large")

// ErrStorageUnavailable is returned for uploads when no object storage is configured.
var ErrStorageUnavailable = errors.New("picture storage is not configured")

var pictureExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// PictureStore persists profile pictures in object storage.
type PictureStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	URL(ctx context.Context, key string) (string, error)
}

// Service provides profile use cases for the owning user.
type Service struct {
	repo           domain.ProfileRepository
	pictures       PictureStore
	maxPictureSize int64
	nowFunc        func() time.Time
}

// NewService constructs a profile service. pictures may be nil when object
// storage is not configured; uploads then fail.
func NewService(repo domain.ProfileRepository, pictures PictureStore, maxPictureSize int64) *Service {
	return &Service{
		repo:           repo,
		pictures:       pictures,
		maxPictureSize: maxPictureSize,
		nowFunc:        time.Now,
	}
}

// UpdateInput defines a partial profile update.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	BirthDate *time.Time
}

// Get retrieves a profile by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: profile id is required", domain.ErrValidation)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, p), nil
}

// ListOthers returns every profile except the caller's own.
func (s *Service) ListOthers(ctx context.Context, selfID string) ([]*domain.Profile, error) {
	items, err := s.repo.ListExcept(ctx, selfID)
	if err != nil {
		return nil, err
	}
	for i, p := range items {
		items[i] = s.decorate(ctx, p)
	}
	return items, nil
}

// Update modifies the caller's profile.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		p.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		p.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.BirthDate != nil {
		if input.BirthDate.IsZero() {
			return nil, fmt.Errorf("%w: birthday is required", domain.ErrValidation)
		}
		p.BirthDate = input.BirthDate.UTC()
	}

	p.UpdatedAt = s.nowFunc().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.decorate(ctx, p), nil
}

// UploadPicture stores a new picture for the profile and records its key.
func (s *Service) UploadPicture(ctx context.Context, id string, data []byte) (*domain.Profile, error) {
	if s.pictures == nil {
		return nil, ErrStorageUnavailable
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: picture is empty", domain.ErrValidation)
	}
	if s.maxPictureSize > 0 && int64(len(data)) > s.maxPictureSize {
		return nil, ErrPictureTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := pictureExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedPicture
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile-pictures/%s/%s.%s", p.ID, uuid.NewString(), ext)
	if err := s.pictures.Put(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("store picture: %w", err)
	}
	updatedAt := s.nowFunc().UTC()
	if err := s.repo.SetPicture(ctx, p.ID, key, updatedAt); err != nil {
		return nil, err
	}

	p.PictureRef = &key
	p.UpdatedAt = updatedAt
	return s.decorate(ctx, p), nil
}

// decorate fills PictureURL. Presign failures leave the URL empty; the picture
// is optional for rendering.
func (s *Service) decorate(ctx context.Context, p *domain.Profile) *domain.Profile {
	if p == nil || p.PictureRef == nil || s.pictures == nil {
		return p
	}
	if url, err := s.pictures.URL(ctx, *p.PictureRef); err == nil {
		p.PictureURL = url
	}
	return p
}
