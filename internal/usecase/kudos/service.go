package kudos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "kudos/backend/internal/domain/auth"
	domain "kudos/backend/internal/domain/kudos"

	"github.com/google/uuid"
)

const defaultRecentLimit = 20

// Service encapsulates kudos use cases.
type Service struct {
	repo     domain.Repository
	profiles authdomain.ProfileRepository
	nowFunc  func() time.Time
}

// NewService constructs a kudos service.
func NewService(repo domain.Repository, profiles authdomain.ProfileRepository) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		nowFunc:  time.Now,
	}
}

// PostInput contains the payload required to send kudos.
type PostInput struct {
	ReceiverProfileID string `json:"receiver"`
	Emoji             string `json:"emoji"`
	Message           string `json:"message"`
	BackgroundColor   string `json:"backgroundColor"`
	TextColor         string `json:"textColor"`
}

// ListInput selects the received kudos of a profile.
type ListInput struct {
	Search string
	Sort   string
}

// Post stores kudos from the author to the receiver profile.
func (s *Service) Post(ctx context.Context, authorProfileID string, input PostInput) (*domain.Kudos, error) {
	input.Emoji = strings.TrimSpace(input.Emoji)
	input.Message = strings.TrimSpace(input.Message)
	input.ReceiverProfileID = strings.TrimSpace(input.ReceiverProfileID)
	if input.Emoji == "" {
		return nil, fmt.Errorf("%w: emoji is required", authdomain.ErrValidation)
	}
	if input.Message == "" {
		return nil, fmt.Errorf("%w: message is required", authdomain.ErrValidation)
	}
	if input.ReceiverProfileID == "" {
		return nil, fmt.Errorf("%w: receiver is required", authdomain.ErrValidation)
	}
	if _, err := uuid.Parse(input.ReceiverProfileID); err != nil {
		return nil, fmt.Errorf("%w: receiver is not a valid profile id", authdomain.ErrValidation)
	}
	if input.ReceiverProfileID == authorProfileID {
		return nil, domain.ErrSelfKudos
	}

	bg, err := parseColor(input.BackgroundColor, domain.ColorBlue)
	if err != nil {
		return nil, err
	}
	fg, err := parseColor(input.TextColor, domain.ColorBlack)
	if err != nil {
		return nil, err
	}

	author, err := s.profiles.GetByID(ctx, authorProfileID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.profiles.GetByID(ctx, input.ReceiverProfileID)
	if err != nil {
		if errors.Is(err, authdomain.ErrProfileNotFound) {
			return nil, domain.ErrReceiverNotFound
		}
		return nil, err
	}

	k := &domain.Kudos{
		ID:                uuid.NewString(),
		Emoji:             input.Emoji,
		Message:           input.Message,
		BackgroundColor:   bg,
		TextColor:         fg,
		AuthorProfileID:   author.ID,
		ReceiverProfileID: receiver.ID,
		CreatedAt:         s.nowFunc().UTC(),
		AuthorName:        author.FullName(),
		ReceiverName:      receiver.FullName(),
	}
	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// ListReceived returns the kudos addressed to the profile.
func (s *Service) ListReceived(ctx context.Context, profileID string, input ListInput) ([]*domain.Kudos, error) {
	return s.repo.List(ctx, domain.Filter{
		ReceiverProfileID: profileID,
		Search:            strings.TrimSpace(input.Search),
		Sort:              parseSort(input.Sort),
	})
}

// ListRecent returns the newest kudos across all profiles.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*domain.Kudos, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.repo.List(ctx, domain.Filter{Sort: domain.SortDate, Limit: limit})
}

func parseColor(raw string, fallback domain.Color) (domain.Color, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return fallback, nil
	}
	c := domain.Color(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w %q", domain.ErrInvalidColor, raw)
	}
	return c, nil
}

func parseSort(raw string) domain.Sort {
	switch domain.Sort(strings.TrimSpace(strings.ToLower(raw))) {
	case domain.SortAuthor:
		return domain.SortAuthor
	case domain.SortEmoji:
		return domain.SortEmoji
	default:
		return domain.SortDate
	}
}
