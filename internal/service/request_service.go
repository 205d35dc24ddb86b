package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/billing"
	"github.com/navipay/port-requests/internal/dto"
	"github.com/navipay/port-requests/internal/model"
	"github.com/navipay/port-requests/internal/repository"
	"github.com/navipay/port-requests/internal/storage"
	"github.com/navipay/port-requests/internal/workflow"
)

// RequestRepository is the persistence contract the request service needs.
// The pgx implementation lives in internal/repository; tests use stubs.
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	Update(ctx context.Context, req *model.Request) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus, modifiedBy uuid.UUID) error
	SetAttachment(ctx context.Context, id uuid.UUID, kind model.AttachmentKind, ref string, modifiedBy uuid.UUID) error
	SetAttachmentStatus(ctx context.Context, id uuid.UUID, kind model.AttachmentKind, ref string, status model.RequestStatus, modifiedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	List(ctx context.Context, f repository.ListFilter) ([]model.Request, int, error)
	Stats(ctx context.Context, ownerID *uuid.UUID) (*model.RequestStats, error)
}

// TariffCatalog resolves the active tariff of a shipping line.
type TariffCatalog interface {
	FindActiveByLine(ctx context.Context, lineID uuid.UUID) (*model.Tariff, error)
}

// RateSource reads the current rate configuration.
type RateSource interface {
	GetCurrent(ctx context.Context) (*model.RateConfig, error)
}

// LineDirectory checks shipping-line existence.
type LineDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingLine, error)
}

type RequestService struct {
	requests RequestRepository
	tariffs  TariffCatalog
	rates    RateSource
	lines    LineDirectory
	docs     storage.Store
}

func NewRequestService(requests RequestRepository, tariffs TariffCatalog, rates RateSource, lines LineDirectory, docs storage.Store) *RequestService {
	return &RequestService{
		requests: requests,
		tariffs:  tariffs,
		rates:    rates,
		lines:    lines,
		docs:     docs,
	}
}

// Create computes a fresh financial snapshot and persists the request. The
// caller becomes the owner; status is always pending regardless of input.
func (s *RequestService) Create(ctx context.Context, actor model.Actor, in *dto.CreateRequestRequest) (*model.Request, error) {
	if _, err := s.lines.GetByID(ctx, in.ShippingLineID); err != nil {
		return nil, err
	}

	rates, err := s.rates.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}

	tariff, err := s.tariffForType(ctx, in.Type, in.ShippingLineID)
	if err != nil {
		return nil, err
	}

	snap, err := billing.ComputeSnapshot(billing.Input{
		Type:           in.Type,
		USDAmount:      in.USDAmount,
		DeclaredAmount: in.DeclaredAmount,
		Tariff:         tariff,
		Rates:          *rates,
	})
	if err != nil {
		return nil, err
	}

	req := &model.Request{
		OwnerID:        actor.ID,
		ShippingLineID: in.ShippingLineID,
		Type:           in.Type,
		BillOfLading:   in.BillOfLading,
		Container:      in.Container,
		PayerDocument:  in.PayerDocument,
		PayerDocType:   in.PayerDocType,

		BaseAmount:        snap.BaseAmount,
		CommissionPercent: snap.CommissionPercent,
		CommissionAmount:  snap.CommissionAmount,
		ExchangeRate:      snap.ExchangeRate,
		FinalAmount:       snap.FinalAmount,
		CalculationDetail: snap.Detail,

		Status:    model.StatusPending,
		CreatedBy: actor.ID,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Update applies a partial edit and recomputes the snapshot under the
// current rate configuration. Once a payment proof is on file only an admin
// may edit, so amounts cannot be tampered with after evidence exists.
func (s *RequestService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, in *dto.UpdateRequestRequest) (*model.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if req.OwnerID != actor.ID {
			return nil, fmt.Errorf("%w: only the owner or an admin may edit this request", apperr.ErrForbidden)
		}
		if req.ProofRef != "" {
			return nil, fmt.Errorf("%w: the request cannot be edited after the payment proof was uploaded", apperr.ErrForbidden)
		}
	}

	if in.ShippingLineID != nil && *in.ShippingLineID != req.ShippingLineID {
		if _, err := s.lines.GetByID(ctx, *in.ShippingLineID); err != nil {
			return nil, err
		}
		req.ShippingLineID = *in.ShippingLineID
	}
	if in.Type != nil {
		req.Type = *in.Type
	}
	if in.BillOfLading != nil {
		req.BillOfLading = *in.BillOfLading
	}
	if in.Container != nil {
		req.Container = *in.Container
	}
	if in.PayerDocument != nil {
		req.PayerDocument = *in.PayerDocument
	}
	if in.PayerDocType != nil {
		req.PayerDocType = *in.PayerDocType
	}

	rates, err := s.rates.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}

	tariff, err := s.tariffForType(ctx, req.Type, req.ShippingLineID)
	if err != nil {
		return nil, err
	}

	snap, err := billing.ComputeSnapshot(billing.Input{
		Type:           req.Type,
		USDAmount:      in.USDAmount,
		DeclaredAmount: in.DeclaredAmount,
		Tariff:         tariff,
		Rates:          *rates,
		PriorDetail:    req.CalculationDetail,
	})
	if err != nil {
		return nil, err
	}

	req.BaseAmount = snap.BaseAmount
	req.CommissionPercent = snap.CommissionPercent
	req.CommissionAmount = snap.CommissionAmount
	req.ExchangeRate = snap.ExchangeRate
	req.FinalAmount = snap.FinalAmount
	req.CalculationDetail = snap.Detail
	req.ModifiedBy = &actor.ID

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ChangeState runs the workflow transition and persists the new status.
func (s *RequestService) ChangeState(ctx context.Context, actor model.Actor, id uuid.UUID, target model.RequestStatus) (*model.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Transition(req, target, actor); err != nil {
		return nil, err
	}

	if err := s.requests.UpdateStatus(ctx, req.ID, req.Status, actor.ID); err != nil {
		return nil, err
	}
	req.ModifiedBy = &actor.ID
	return req, nil
}

func (s *RequestService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: not your request", apperr.ErrForbidden)
	}
	return req, nil
}

// List returns a page of requests. Clients only ever see their own.
func (s *RequestService) List(ctx context.Context, actor model.Actor, f repository.ListFilter) ([]model.Request, int, error) {
	if !actor.IsAdmin() {
		f.OwnerID = &actor.ID
	}
	return s.requests.List(ctx, f)
}

// Stats aggregates counts; clients are scoped to their own requests.
func (s *RequestService) Stats(ctx context.Context, actor model.Actor) (*model.RequestStats, error) {
	var owner *uuid.UUID
	if !actor.IsAdmin() {
		owner = &actor.ID
	}
	return s.requests.Stats(ctx, owner)
}

// Remove soft-deletes the request and releases its stored documents.
func (s *RequestService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the owner or an admin may delete this request", apperr.ErrForbidden)
	}

	if err := s.requests.SoftDelete(ctx, id, actor.ID); err != nil {
		return err
	}

	releaseDocument(ctx, s.docs, model.AttachmentProof, req.ProofRef)
	releaseDocument(ctx, s.docs, model.AttachmentInvoice, req.InvoiceRef)
	releaseDocument(ctx, s.docs, model.AttachmentSupplement, req.SupplementRef)
	return nil
}

// tariffForType loads the active tariff for gate-in requests. A missing
// tariff is reported by the billing engine; other lookup failures propagate.
func (s *RequestService) tariffForType(ctx context.Context, typ model.RequestType, lineID uuid.UUID) (*model.Tariff, error) {
	if typ != model.RequestGateIn {
		return nil, nil
	}
	tariff, err := s.tariffs.FindActiveByLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return tariff, nil
}

// releaseDocument deletes a stored object best-effort: storage failures are
// logged and never block the surrounding operation.
func releaseDocument(ctx context.Context, docs storage.Store, kind model.AttachmentKind, ref string) {
	if ref == "" {
		return
	}
	if err := docs.Delete(ctx, kind, ref); err != nil {
		log.Warn().Err(err).
			Str("kind", string(kind)).
			Str("ref", ref).
			Msg("failed to delete stored document")
	}
}
