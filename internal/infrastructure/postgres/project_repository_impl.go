package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
	"github.com/blinkforge/blinkforge-api/internal/domain/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// List returns all projects owned by the given user, most recent first.
// Ties in created_at fall back to insertion order via the serial seq column.
func (r *ProjectRepository) List(ctx context.Context, userID string) ([]entity.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, description, prompt, status, app_url, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Project, 0, 16)
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Prompt,
			&p.Status, &p.AppURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, user_id, title, description, prompt, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Title, p.Description, p.Prompt, p.Status)

	return row.Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) Delete(ctx context.Context, userID, projectID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM projects
		WHERE user_id = $1 AND id = $2
	`, userID, projectID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkStatus performs the at-most-once build transition. The WHERE guard on
// the previous status makes a second attempt a no-op reported as ErrNotFound.
func (r *ProjectRepository) MarkStatus(ctx context.Context, projectID string, from, to entity.ProjectStatus, appURL string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET status = $1, app_url = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`, to, appURL, projectID, from)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
