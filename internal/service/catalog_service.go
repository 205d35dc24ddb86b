package service

import (
	"context"
	"fmt"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/dto"
	"github.com/navipay/port-requests/internal/model"

	"github.com/google/uuid"
)

// TariffStore extends the catalog with the administrative mutations.
type TariffStore interface {
	TariffCatalog
	Create(ctx context.Context, t *model.Tariff) error
	Update(ctx context.Context, t *model.Tariff) error
	List(ctx context.Context) ([]model.Tariff, error)
}

// RateStore extends the rate source with the administrative replace.
type RateStore interface {
	RateSource
	Replace(ctx context.Context, cfg *model.RateConfig) error
}

// LineStore extends the line directory with listing.
type LineStore interface {
	LineDirectory
	List(ctx context.Context) ([]model.ShippingLine, error)
}

// CatalogService manages the reference data requests are billed against:
// shipping lines, per-line tariffs and the global rate configuration.
type CatalogService struct {
	tariffs TariffStore
	rates   RateStore
	lines   LineStore
}

func NewCatalogService(tariffs TariffStore, rates RateStore, lines LineStore) *CatalogService {
	return &CatalogService{tariffs: tariffs, rates: rates, lines: lines}
}

func (s *CatalogService) ListShippingLines(ctx context.Context) ([]model.ShippingLine, error) {
	return s.lines.List(ctx)
}

func (s *CatalogService) ListTariffs(ctx context.Context, actor model.Actor) ([]model.Tariff, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: tariff management is admin only", apperr.ErrForbidden)
	}
	return s.tariffs.List(ctx)
}

func (s *CatalogService) CreateTariff(ctx context.Context, actor model.Actor, in *dto.CreateTariffRequest) (*model.Tariff, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: tariff management is admin only", apperr.ErrForbidden)
	}
	if in.BaseAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tariff base must not be negative", apperr.ErrInvalidAmount)
	}
	if _, err := s.lines.GetByID(ctx, in.ShippingLineID); err != nil {
		return nil, err
	}

	t := &model.Tariff{ShippingLineID: in.ShippingLineID, BaseAmount: in.BaseAmount}
	if err := s.tariffs.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) UpdateTariff(ctx context.Context, actor model.Actor, id uuid.UUID, in *dto.UpdateTariffRequest) (*model.Tariff, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: tariff management is admin only", apperr.ErrForbidden)
	}
	if in.BaseAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tariff base must not be negative", apperr.ErrInvalidAmount)
	}

	t := &model.Tariff{ID: id, BaseAmount: in.BaseAmount}
	if err := s.tariffs.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) GetRateConfig(ctx context.Context, actor model.Actor) (*model.RateConfig, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: rate configuration is admin only", apperr.ErrForbidden)
	}
	return s.rates.GetCurrent(ctx)
}

// UpdateRateConfig replaces the singleton. Snapshots already stored on
// requests keep the rates they were computed with.
func (s *CatalogService) UpdateRateConfig(ctx context.Context, actor model.Actor, in *dto.UpdateRateConfigRequest) (*model.RateConfig, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: rate configuration is admin only", apperr.ErrForbidden)
	}
	if in.CommissionPercent.IsNegative() || in.USDToLocalRate.IsNegative() || in.AltToLocalRate.IsNegative() {
		return nil, fmt.Errorf("%w: rates must not be negative", apperr.ErrInvalidAmount)
	}

	cfg := &model.RateConfig{
		CommissionPercent: in.CommissionPercent,
		USDToLocalRate:    in.USDToLocalRate,
		AltToLocalRate:    in.AltToLocalRate,
	}
	if err := s.rates.Replace(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
