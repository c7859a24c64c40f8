package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "kudos/backend/internal/domain/auth"
)

// UserRepository persists users and their profiles in PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ domain.UserRepository = (*UserRepository)(nil)

// CreateWithProfile inserts the profile and then the user inside one
// transaction. A duplicate email rolls both back and yields ErrEmailExists.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	const insertProfile = `
INSERT INTO profiles (id, first_name, last_name, birth_date, picture_ref, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	const insertUser = `
INSERT INTO users (id, email, password_hash, profile_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, insertProfile,
			profile.ID,
			profile.FirstName,
			profile.LastName,
			profile.BirthDate,
			nullString(profile.PictureRef),
			profile.CreatedAt,
			profile.UpdatedAt,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertUser,
			user.ID,
			user.Email,
			user.PasswordHash,
			user.ProfileID,
			user.CreatedAt,
			user.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByEmail fetches a user by exact email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
SELECT id, email, password_hash, profile_id, created_at, updated_at
FROM users WHERE email = $1
`
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.ProfileID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// GetIdentityByEmail fetches a user joined with its profile.
func (r *UserRepository) GetIdentityByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const query = `
SELECT u.id, u.email, u.password_hash, u.profile_id, u.created_at, u.updated_at,
       p.id, p.first_name, p.last_name, p.birth_date, p.picture_ref, p.created_at, p.updated_at
FROM users u
JOIN profiles p ON p.id = u.profile_id
WHERE u.email = $1
`
	var (
		id      domain.Identity
		p       domain.Profile
		picture sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&id.ID,
		&id.Email,
		&id.PasswordHash,
		&id.ProfileID,
		&id.CreatedAt,
		&id.UpdatedAt,
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.BirthDate,
		&picture,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get identity by email: %w", err)
	}
	p.PictureRef = stringPtr(picture)
	id.Profile = &p
	return &id, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
