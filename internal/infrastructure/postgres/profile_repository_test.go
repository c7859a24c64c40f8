package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	domain "kudos/backend/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{"id", "first_name", "last_name", "birth_date", "picture_ref", "created_at", "updated_at"}

func TestProfileGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db)
	bd := time.Date(1990, 5, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, first_name, last_name, birth_date, picture_ref, created_at, updated_at FROM profiles WHERE id = \$1`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow("p-1", "A", "B", bd, nil, now, now))

	p, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "A", p.FirstName)
	assert.Nil(t, p.PictureRef)
	assert.True(t, p.BirthDate.Equal(bd))
}

func TestProfileGetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`FROM profiles WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileListExcept(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`FROM profiles WHERE id <> \$1 ORDER BY first_name ASC, last_name ASC`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("p-2", "Alan", "Turing", now, nil, now, now).
			AddRow("p-3", "Grace", "Hopper", now, "k", now, now))

	items, err := repo.ListExcept(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p-2", items[0].ID)
	require.NotNil(t, items[1].PictureRef)
	assert.Equal(t, "k", *items[1].PictureRef)
}

func TestProfileUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db)
	p := &domain.Profile{ID: "p-1", FirstName: "A", LastName: "B", BirthDate: now, UpdatedAt: now}

	mock.ExpectExec(`(?s)UPDATE profiles\s+SET first_name = \$2, last_name = \$3, birth_date = \$4, updated_at = \$5\s+WHERE id = \$1`).
		WithArgs("p-1", "A", "B", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), p))

	mock.ExpectExec(`UPDATE profiles`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), p), domain.ErrProfileNotFound)
}

func TestProfileSetPicture(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(`UPDATE profiles SET picture_ref = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("p-1", "profile-pictures/p-1/a.jpg", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetPicture(context.Background(), "p-1", "profile-pictures/p-1/a.jpg", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
