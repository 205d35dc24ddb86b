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

type TariffRepository struct {
	pool *pgxpool.Pool
}

func NewTariffRepository(pool *pgxpool.Pool) *TariffRepository {
	return &TariffRepository{pool: pool}
}

// FindActiveByLine returns the single active tariff for a shipping line.
func (r *TariffRepository) FindActiveByLine(ctx context.Context, lineID uuid.UUID) (*model.Tariff, error) {
	var t model.Tariff
	err := r.pool.QueryRow(ctx,
		`SELECT id, shipping_line_id, base_amount, created_at, updated_at
		FROM tariffs WHERE shipping_line_id = $1`, lineID,
	).Scan(&t.ID, &t.ShippingLineID, &t.BaseAmount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no tariff for shipping line %s", apperr.ErrNotFound, lineID)
		}
		return nil, fmt.Errorf("find tariff: %w", err)
	}
	return &t, nil
}

func (r *TariffRepository) Create(ctx context.Context, t *model.Tariff) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tariffs (shipping_line_id, base_amount)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		t.ShippingLineID, t.BaseAmount,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: shipping line %s already has a tariff",
				apperr.ErrConflict, t.ShippingLineID)
		}
		return fmt.Errorf("insert tariff: %w", err)
	}
	return nil
}

func (r *TariffRepository) Update(ctx context.Context, t *model.Tariff) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tariffs SET base_amount = $2, updated_at = now() WHERE id = $1`,
		t.ID, t.BaseAmount)
	if err != nil {
		return fmt.Errorf("update tariff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tariff %s", apperr.ErrNotFound, t.ID)
	}
	return nil
}

func (r *TariffRepository) List(ctx context.Context) ([]model.Tariff, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, shipping_line_id, base_amount, created_at, updated_at
		FROM tariffs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	defer rows.Close()

	var out []model.Tariff
	for rows.Next() {
		var t model.Tariff
		if err := rows.Scan(&t.ID, &t.ShippingLineID, &t.BaseAmount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tariff: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
