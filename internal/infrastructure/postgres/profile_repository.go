package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "kudos/backend/internal/domain/auth"
)

// ProfileRepository persists profiles in PostgreSQL.
type ProfileRepository struct {
	db DBTX
}

// NewProfileRepository constructs a repository.
func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ domain.ProfileRepository = (*ProfileRepository)(nil)

const profileColumns = `id, first_name, last_name, birth_date, picture_ref, created_at, updated_at`

// GetByID fetches a profile by id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ListExcept returns all profiles but the excluded one, sorted by name.
func (r *ProfileRepository) ListExcept(ctx context.Context, excludeID string) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id <> $1 ORDER BY first_name ASC, last_name ASC`
	rows, err := r.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update writes name and birth date changes.
func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	const query = `
UPDATE profiles
SET first_name = $2, last_name = $3, birth_date = $4, updated_at = $5
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.FirstName, p.LastName, p.BirthDate, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectAffected(res, domain.ErrProfileNotFound)
}

// SetPicture records the object storage key of the profile picture.
func (r *ProfileRepository) SetPicture(ctx context.Context, id, pictureRef string, updatedAt time.Time) error {
	const query = `UPDATE profiles SET picture_ref = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, pictureRef, updatedAt)
	if err != nil {
		return fmt.Errorf("set profile picture: %w", err)
	}
	return expectAffected(res, domain.ErrProfileNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*domain.Profile, error) {
	var (
		p       domain.Profile
		picture sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.BirthDate,
		&picture,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PictureRef = stringPtr(picture)
	return &p, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
