package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Fixed identities so local environments and integration tests can sign
// tokens without querying first.
var (
	SeedAdminID  = uuid.MustParse("6e1c1cd2-0b6f-4f3a-9a45-0d6d7a2f9b01")
	SeedClientID = uuid.MustParse("b2f5c7a8-4d21-4e9b-8c3e-5a1f0e8d7c02")
)

var shippingLines = []string{
	"Maersk",
	"MSC",
	"CMA CGM",
	"Hapag-Lloyd",
	"Evergreen",
	"COSCO",
}

// Tariff bases are quoted in the secondary currency per line.
var tariffBases = map[string]string{
	"Maersk":      "700",
	"MSC":         "650",
	"CMA CGM":     "720",
	"Hapag-Lloyd": "680",
	"Evergreen":   "600",
	"COSCO":       "640",
}

func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	// Idempotency: a seeded catalog means the bootstrap already ran.
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM shipping_lines").Scan(&count); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO actors (id, name, email, role) VALUES
			($1, 'Operations Admin', 'admin@navipay.test', 'admin'),
			($2, 'Agencia Costera', 'client@navipay.test', 'client')`,
		SeedAdminID, SeedClientID)
	if err != nil {
		return fmt.Errorf("seed actors: %w", err)
	}

	for _, name := range shippingLines {
		var lineID uuid.UUID
		err := tx.QueryRow(ctx,
			`INSERT INTO shipping_lines (name) VALUES ($1) RETURNING id`, name,
		).Scan(&lineID)
		if err != nil {
			return fmt.Errorf("seed shipping line %s: %w", name, err)
		}

		base, err := decimal.NewFromString(tariffBases[name])
		if err != nil {
			return fmt.Errorf("parse tariff base for %s: %w", name, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO tariffs (shipping_line_id, base_amount) VALUES ($1, $2)`,
			lineID, base)
		if err != nil {
			return fmt.Errorf("seed tariff for %s: %w", name, err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO rate_config (commission_percent, usd_to_local_rate, alt_to_local_rate)
		VALUES ($1, $2, $3)`,
		decimal.NewFromInt(3), decimal.RequireFromString("6.96"), decimal.RequireFromString("0.008"))
	if err != nil {
		return fmt.Errorf("seed rate config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	log.Info().
		Int("shipping_lines", len(shippingLines)).
		Msg("seed data inserted")
	return nil
}
