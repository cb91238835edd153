package draftrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/meetmail/internal/domain/mailgen"
)

// PostgresRepository implements mailgen.DraftRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts one history row.
func (r *PostgresRepository) Save(ctx context.Context, rec mailgen.DraftRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO drafts (id, title, tone, audience, email_type, subject, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Title, rec.Tone, rec.Audience, rec.Type, rec.Subject, rec.CreatedAt)
	return err
}

// Recent returns the newest drafts first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]mailgen.DraftRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, tone, audience, email_type, subject, created_at
		FROM drafts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mailgen.DraftRecord
	for rows.Next() {
		var rec mailgen.DraftRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Tone, &rec.Audience, &rec.Type, &rec.Subject, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ mailgen.DraftRepository = (*PostgresRepository)(nil)
