package postgres

import (
	"context"
	"fmt"
	"strings"

	domain "kudos/backend/internal/domain/kudos"
)

// KudosRepository persists kudos in PostgreSQL.
type KudosRepository struct {
	db DBTX
}

// NewKudosRepository constructs a repository.
func NewKudosRepository(db DBTX) *KudosRepository {
	return &KudosRepository{db: db}
}

var _ domain.Repository = (*KudosRepository)(nil)

// Create inserts a new kudos.
func (r *KudosRepository) Create(ctx context.Context, k *domain.Kudos) error {
	const query = `
INSERT INTO kudos (id, emoji, message, background_color, text_color, author_profile_id, receiver_profile_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.db.ExecContext(ctx, query,
		k.ID,
		k.Emoji,
		k.Message,
		string(k.BackgroundColor),
		string(k.TextColor),
		k.AuthorProfileID,
		k.ReceiverProfileID,
		k.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrReceiverNotFound
		}
		return fmt.Errorf("create kudos: %w", err)
	}
	return nil
}

// List returns kudos matching the filter together with author and receiver names.
func (r *KudosRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.Kudos, error) {
	query := `
SELECT k.id, k.emoji, k.message, k.background_color, k.text_color,
       k.author_profile_id, k.receiver_profile_id, k.created_at,
       a.first_name, a.last_name, r.first_name, r.last_name
FROM kudos k
JOIN profiles a ON a.id = k.author_profile_id
JOIN profiles r ON r.id = k.receiver_profile_id
`
	var (
		where []string
		args  []any
	)
	if filter.ReceiverProfileID != "" {
		args = append(args, filter.ReceiverProfileID)
		where = append(where, fmt.Sprintf("k.receiver_profile_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where = append(where, fmt.Sprintf(`k.message ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	query += "ORDER BY " + orderClause(filter.Sort)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kudos: %w", err)
	}
	defer rows.Close()

	var out []*domain.Kudos
	for rows.Next() {
		var (
			k             domain.Kudos
			bg, fg        string
			aFirst, aLast string
			rFirst, rLast string
		)
		if err := rows.Scan(
			&k.ID,
			&k.Emoji,
			&k.Message,
			&bg,
			&fg,
			&k.AuthorProfileID,
			&k.ReceiverProfileID,
			&k.CreatedAt,
			&aFirst,
			&aLast,
			&rFirst,
			&rLast,
		); err != nil {
			return nil, fmt.Errorf("scan kudos: %w", err)
		}
		k.BackgroundColor = domain.Color(bg)
		k.TextColor = domain.Color(fg)
		k.AuthorName = strings.TrimSpace(aFirst + " " + aLast)
		k.ReceiverName = strings.TrimSpace(rFirst + " " + rLast)
		out = append(out, &k)
	}
	return out, rows.Err()
}

func orderClause(sort domain.Sort) string {
	switch sort {
	case domain.SortAuthor:
		return "a.first_name DESC, k.created_at DESC"
	case domain.SortEmoji:
		return "k.emoji DESC, k.created_at DESC"
	default:
		return "k.created_at DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
