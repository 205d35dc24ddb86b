package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
	"github.com/navipay/port-requests/internal/repository"
)

// In-memory fakes for the service contracts, so the billing and workflow
// semantics are exercised without a database.

type stubRequestRepo struct {
	byID          map[uuid.UUID]*model.Request
	containersDay map[string]bool
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{
		byID:          make(map[uuid.UUID]*model.Request),
		containersDay: make(map[string]bool),
	}
}

func (s *stubRequestRepo) Create(_ context.Context, req *model.Request) error {
	if req.Container != "" && s.containersDay[req.Container] {
		return fmt.Errorf("%w: a request for container %s was already filed today",
			apperr.ErrConflict, req.Container)
	}
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	req.ModifiedAt = req.CreatedAt
	cp := *req
	s.byID[req.ID] = &cp
	if req.Container != "" {
		s.containersDay[req.Container] = true
	}
	return nil
}

func (s *stubRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Request, error) {
	req, ok := s.byID[id]
	if !ok || req.DeletedAt != nil {
		return nil, fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	cp := *req
	return &cp, nil
}

func (s *stubRequestRepo) Update(_ context.Context, req *model.Request) error {
	if _, ok := s.byID[req.ID]; !ok {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, req.ID)
	}
	cp := *req
	cp.ModifiedAt = time.Now()
	s.byID[req.ID] = &cp
	return nil
}

func (s *stubRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.RequestStatus, modifiedBy uuid.UUID) error {
	req, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	req.Status = status
	req.ModifiedBy = &modifiedBy
	return nil
}

func (s *stubRequestRepo) SetAttachment(_ context.Context, id uuid.UUID, kind model.AttachmentKind, ref string, modifiedBy uuid.UUID) error {
	req, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	req.SetAttachmentRef(kind, ref)
	req.ModifiedBy = &modifiedBy
	return nil
}

func (s *stubRequestRepo) SetAttachmentStatus(_ context.Context, id uuid.UUID, kind model.AttachmentKind, ref string, status model.RequestStatus, modifiedBy uuid.UUID) error {
	if err := s.SetAttachment(context.Background(), id, kind, ref, modifiedBy); err != nil {
		return err
	}
	s.byID[id].Status = status
	return nil
}

func (s *stubRequestRepo) SoftDelete(_ context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	req, ok := s.byID[id]
	if !ok || req.DeletedAt != nil {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	now := time.Now()
	req.DeletedAt = &now
	req.DeletedBy = &deletedBy
	return nil
}

func (s *stubRequestRepo) List(_ context.Context, f repository.ListFilter) ([]model.Request, int, error) {
	var out []model.Request
	for _, req := range s.byID {
		if req.DeletedAt != nil {
			continue
		}
		if f.OwnerID != nil && req.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != "" && string(req.Status) != f.Status {
			continue
		}
		if f.Type != "" && string(req.Type) != f.Type {
			continue
		}
		out = append(out, *req)
	}
	return out, len(out), nil
}

func (s *stubRequestRepo) Stats(_ context.Context, ownerID *uuid.UUID) (*model.RequestStats, error) {
	stats := &model.RequestStats{ByStatus: make(map[model.RequestStatus]int)}
	totals := make(map[model.RequestType]*model.TypeStat)
	for _, req := range s.byID {
		if req.DeletedAt != nil {
			continue
		}
		if ownerID != nil && req.OwnerID != *ownerID {
			continue
		}
		stats.Total++
		stats.ByStatus[req.Status]++
		ts, ok := totals[req.Type]
		if !ok {
			ts = &model.TypeStat{Type: req.Type, TotalAmount: decimal.Zero}
			totals[req.Type] = ts
		}
		ts.Count++
		ts.TotalAmount = ts.TotalAmount.Add(req.FinalAmount)
	}
	for _, ts := range totals {
		stats.ByType = append(stats.ByType, *ts)
	}
	return stats, nil
}

type stubTariffStore struct {
	byLine map[uuid.UUID]*model.Tariff
}

func newStubTariffStore() *stubTariffStore {
	return &stubTariffStore{byLine: make(map[uuid.UUID]*model.Tariff)}
}

func (s *stubTariffStore) FindActiveByLine(_ context.Context, lineID uuid.UUID) (*model.Tariff, error) {
	t, ok := s.byLine[lineID]
	if !ok {
		return nil, fmt.Errorf("%w: no tariff for shipping line %s", apperr.ErrNotFound, lineID)
	}
	cp := *t
	return &cp, nil
}

func (s *stubTariffStore) Create(_ context.Context, t *model.Tariff) error {
	if _, ok := s.byLine[t.ShippingLineID]; ok {
		return fmt.Errorf("%w: shipping line %s already has a tariff", apperr.ErrConflict, t.ShippingLineID)
	}
	t.ID = uuid.New()
	cp := *t
	s.byLine[t.ShippingLineID] = &cp
	return nil
}

func (s *stubTariffStore) Update(_ context.Context, t *model.Tariff) error {
	for _, existing := range s.byLine {
		if existing.ID == t.ID {
			existing.BaseAmount = t.BaseAmount
			return nil
		}
	}
	return fmt.Errorf("%w: tariff %s", apperr.ErrNotFound, t.ID)
}

func (s *stubTariffStore) List(_ context.Context) ([]model.Tariff, error) {
	var out []model.Tariff
	for _, t := range s.byLine {
		out = append(out, *t)
	}
	return out, nil
}

type stubRateStore struct {
	cfg *model.RateConfig
}

func (s *stubRateStore) GetCurrent(_ context.Context) (*model.RateConfig, error) {
	if s.cfg == nil {
		return nil, apperr.ErrConfigMissing
	}
	cp := *s.cfg
	return &cp, nil
}

func (s *stubRateStore) Replace(_ context.Context, cfg *model.RateConfig) error {
	if s.cfg == nil {
		return apperr.ErrConfigMissing
	}
	cfg.ID = s.cfg.ID
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	s.cfg = &cp
	return nil
}

type stubLineStore struct {
	byID map[uuid.UUID]*model.ShippingLine
}

func newStubLineStore(names ...string) *stubLineStore {
	s := &stubLineStore{byID: make(map[uuid.UUID]*model.ShippingLine)}
	for _, name := range names {
		id := uuid.New()
		s.byID[id] = &model.ShippingLine{ID: id, Name: name, CreatedAt: time.Now()}
	}
	return s
}

func (s *stubLineStore) GetByID(_ context.Context, id uuid.UUID) (*model.ShippingLine, error) {
	line, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: shipping line %s", apperr.ErrNotFound, id)
	}
	cp := *line
	return &cp, nil
}

func (s *stubLineStore) List(_ context.Context) ([]model.ShippingLine, error) {
	var out []model.ShippingLine
	for _, line := range s.byID {
		out = append(out, *line)
	}
	return out, nil
}

func (s *stubLineStore) anyID() uuid.UUID {
	for id := range s.byID {
		return id
	}
	return uuid.Nil
}
