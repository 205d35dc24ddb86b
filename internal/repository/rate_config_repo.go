package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

type RateConfigRepository struct {
	pool *pgxpool.Pool
}

func NewRateConfigRepository(pool *pgxpool.Pool) *RateConfigRepository {
	return &RateConfigRepository{pool: pool}
}

// GetCurrent reads the configuration singleton. A missing row means the
// bootstrap never ran; computations must not proceed.
func (r *RateConfigRepository) GetCurrent(ctx context.Context) (*model.RateConfig, error) {
	var cfg model.RateConfig
	err := r.pool.QueryRow(ctx,
		`SELECT id, commission_percent, usd_to_local_rate, alt_to_local_rate, updated_at
		FROM rate_config ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&cfg.ID, &cfg.CommissionPercent, &cfg.USDToLocalRate, &cfg.AltToLocalRate, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrConfigMissing
		}
		return nil, fmt.Errorf("get rate config: %w", err)
	}
	return &cfg, nil
}

// Replace updates the singleton in place. In-flight computations keep
// whichever snapshot their read returned; rows already written are never
// touched.
func (r *RateConfigRepository) Replace(ctx context.Context, cfg *model.RateConfig) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE rate_config SET
			commission_percent = $1, usd_to_local_rate = $2, alt_to_local_rate = $3,
			updated_at = now()
		RETURNING id, updated_at`,
		cfg.CommissionPercent, cfg.USDToLocalRate, cfg.AltToLocalRate,
	).Scan(&cfg.ID, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrConfigMissing
		}
		return fmt.Errorf("replace rate config: %w", err)
	}
	return nil
}
