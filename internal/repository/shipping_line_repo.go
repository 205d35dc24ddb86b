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

type ShippingLineRepository struct {
	pool *pgxpool.Pool
}

func NewShippingLineRepository(pool *pgxpool.Pool) *ShippingLineRepository {
	return &ShippingLineRepository{pool: pool}
}

func (r *ShippingLineRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingLine, error) {
	var line model.ShippingLine
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM shipping_lines WHERE id = $1`, id,
	).Scan(&line.ID, &line.Name, &line.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: shipping line %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get shipping line: %w", err)
	}
	return &line, nil
}

func (r *ShippingLineRepository) List(ctx context.Context) ([]model.ShippingLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM shipping_lines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list shipping lines: %w", err)
	}
	defer rows.Close()

	var out []model.ShippingLine
	for rows.Next() {
		var line model.ShippingLine
		if err := rows.Scan(&line.ID, &line.Name, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shipping line: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
