package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talha309/multiuser-ai-assistant/internal/domain"
)

// ThreadRepository define el contrato de persistencia para hilos de conversación.
// Las lecturas van siempre acotadas por owner para no filtrar hilos ajenos.
type ThreadRepository interface {
	Create(ctx context.Context, thread domain.Thread) error
	GetOwnedBy(ctx context.Context, ownerID, threadID string) (domain.Thread, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Thread, error)
}

// PgThreadRepository implementa ThreadRepository usando pgxpool.
type PgThreadRepository struct {
	pool *pgxpool.Pool
}

func NewPgThreadRepository(pool *pgxpool.Pool) *PgThreadRepository {
	return &PgThreadRepository{pool: pool}
}

func (r *PgThreadRepository) Create(ctx context.Context, thread domain.Thread) error {
	const query = `
		INSERT INTO threads (id, title, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		thread.ID,
		thread.Title,
		thread.OwnerID,
		thread.CreatedAt,
	)
	return err
}

func (r *PgThreadRepository) GetOwnedBy(ctx context.Context, ownerID, threadID string) (domain.Thread, error) {
	const query = `
		SELECT id, title, owner_id, created_at
		FROM threads
		WHERE id = $1 AND owner_id = $2
	`
	var t domain.Thread
	err := r.pool.QueryRow(ctx, query, threadID, ownerID).Scan(
		&t.ID,
		&t.Title,
		&t.OwnerID,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Thread{}, err
	}
	return t, err
}

func (r *PgThreadRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Thread, error) {
	const query = `
		SELECT id, title, owner_id, created_at
		FROM threads
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var t domain.Thread
		if err := rows.Scan(&t.ID, &t.Title, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return threads, nil
}
