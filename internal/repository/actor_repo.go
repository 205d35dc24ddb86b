package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

// ActorRepository is the role-lookup side of the actor directory. Credential
// management lives elsewhere; this service only ever reads id, name and role.
type ActorRepository struct {
	pool *pgxpool.Pool
}

func NewActorRepository(pool *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{pool: pool}
}

func (r *ActorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Actor, error) {
	var a model.Actor
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, role, created_at FROM actors WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: actor %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return &a, nil
}
