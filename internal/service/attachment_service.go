package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
	"github.com/navipay/port-requests/internal/storage"
	"github.com/navipay/port-requests/internal/workflow"
)

// AttachmentService couples document uploads to the request workflow: a
// payment proof moves pending -> uploaded, an invoice moves verified ->
// paid, a supplement never moves anything. Replacing a document releases
// the previous object.
type AttachmentService struct {
	requests RequestRepository
	docs     storage.Store
}

func NewAttachmentService(requests RequestRepository, docs storage.Store) *AttachmentService {
	return &AttachmentService{requests: requests, docs: docs}
}

// UploadProof accepts a payment proof while the request is pending and
// advances it to uploaded. Owner or admin may call it. Returns the stored
// reference and the status the request ends up in.
func (s *AttachmentService) UploadProof(ctx context.Context, actor model.Actor, id uuid.UUID, r io.Reader, size int64) (string, model.RequestStatus, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}

	// The transition check carries the whole gate: ownership, the client
	// role restriction and the pending-only rule.
	if err := workflow.Transition(req, model.StatusUploaded, actor); err != nil {
		return "", "", err
	}

	oldRef := req.ProofRef
	ref, err := s.docs.Put(ctx, model.AttachmentProof, r, size)
	if err != nil {
		return "", "", err
	}

	if err := s.requests.SetAttachmentStatus(ctx, id, model.AttachmentProof, ref, model.StatusUploaded, actor.ID); err != nil {
		releaseDocument(ctx, s.docs, model.AttachmentProof, ref)
		return "", "", err
	}

	releaseDocument(ctx, s.docs, model.AttachmentProof, oldRef)
	return ref, model.StatusUploaded, nil
}

// UploadInvoice accepts an invoice on a verified request and marks it paid.
// Admin only.
func (s *AttachmentService) UploadInvoice(ctx context.Context, actor model.Actor, id uuid.UUID, r io.Reader, size int64) (string, model.RequestStatus, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}

	if !actor.IsAdmin() {
		return "", "", fmt.Errorf("%w: only admins may upload invoices", apperr.ErrForbidden)
	}
	if err := workflow.Transition(req, model.StatusPaid, actor); err != nil {
		return "", "", err
	}

	oldRef := req.InvoiceRef
	ref, err := s.docs.Put(ctx, model.AttachmentInvoice, r, size)
	if err != nil {
		return "", "", err
	}

	if err := s.requests.SetAttachmentStatus(ctx, id, model.AttachmentInvoice, ref, model.StatusPaid, actor.ID); err != nil {
		releaseDocument(ctx, s.docs, model.AttachmentInvoice, ref)
		return "", "", err
	}

	releaseDocument(ctx, s.docs, model.AttachmentInvoice, oldRef)
	return ref, model.StatusPaid, nil
}

// UploadSupplement stores the supplementary document. Owner or admin, any
// state but void; the status never changes.
func (s *AttachmentService) UploadSupplement(ctx context.Context, actor model.Actor, id uuid.UUID, r io.Reader, size int64) (string, model.RequestStatus, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}

	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return "", "", fmt.Errorf("%w: only the owner or an admin may attach documents", apperr.ErrForbidden)
	}
	if req.Status == model.StatusVoid {
		return "", "", fmt.Errorf("%w: void requests do not accept documents", apperr.ErrInvalidTransition)
	}

	oldRef := req.SupplementRef
	ref, err := s.docs.Put(ctx, model.AttachmentSupplement, r, size)
	if err != nil {
		return "", "", err
	}

	if err := s.requests.SetAttachment(ctx, id, model.AttachmentSupplement, ref, actor.ID); err != nil {
		releaseDocument(ctx, s.docs, model.AttachmentSupplement, ref)
		return "", "", err
	}

	releaseDocument(ctx, s.docs, model.AttachmentSupplement, oldRef)
	return ref, req.Status, nil
}

// Delete removes an attached document reference and releases the object.
func (s *AttachmentService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID, kind model.AttachmentKind) error {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the owner or an admin may delete documents", apperr.ErrForbidden)
	}

	ref := req.AttachmentRef(kind)
	if ref == "" {
		return fmt.Errorf("%w: request has no %s document", apperr.ErrNotFound, kind)
	}

	if err := s.requests.SetAttachment(ctx, id, kind, "", actor.ID); err != nil {
		return err
	}

	releaseDocument(ctx, s.docs, kind, ref)
	return nil
}

// Download streams an attached document back to the caller.
func (s *AttachmentService) Download(ctx context.Context, actor model.Actor, id uuid.UUID, kind model.AttachmentKind) (*storage.Object, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the owner or an admin may read documents", apperr.ErrForbidden)
	}

	ref := req.AttachmentRef(kind)
	if ref == "" {
		return nil, fmt.Errorf("%w: request has no %s document", apperr.ErrNotFound, kind)
	}

	return s.docs.Get(ctx, kind, ref)
}
