package auth

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users and their profiles.
type UserRepository interface {
	// CreateWithProfile inserts the profile and the user atomically.
	CreateWithProfile(ctx context.Context, user *User, profile *Profile) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
}

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListExcept(ctx context.Context, excludeID string) ([]*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	SetPicture(ctx context.Context, id, pictureRef string, updatedAt time.Time) error
}
