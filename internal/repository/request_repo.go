package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

const requestColumns = `id, owner_id, shipping_line_id, type, bill_of_lading, container,
	payer_document, payer_doc_type, base_amount, commission_percent, commission_amount,
	exchange_rate, final_amount, calculation_detail, status, proof_ref, invoice_ref,
	supplement_ref, created_by, modified_by, deleted_by, created_at, modified_at, deleted_at`

// ListFilter narrows List results. Zero values mean "no filter"; Window may
// be "today" (created today) or "history" (created before today).
type ListFilter struct {
	OwnerID        *uuid.UUID
	ShippingLineID *uuid.UUID
	Type           string
	Status         string
	BillOfLading   string
	Container      string
	Window         string
	Limit          int
	Offset         int
}

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create inserts the request inside a transaction that first checks the
// per-day container rule, so two concurrent creates cannot both pass the
// check. The partial unique index on (container, day) backstops the race;
// its violation also surfaces as Conflict.
func (r *RequestRepository) Create(ctx context.Context, req *model.Request) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create request: %w", err)
	}
	defer tx.Rollback(ctx)

	if req.Container != "" {
		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(
				SELECT 1 FROM requests
				WHERE container = $1
				  AND created_at::date = CURRENT_DATE
				  AND deleted_at IS NULL)`,
			req.Container,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check container uniqueness: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: a request for container %s was already filed today",
				apperr.ErrConflict, req.Container)
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO requests (owner_id, shipping_line_id, type, bill_of_lading, container,
			payer_document, payer_doc_type, base_amount, commission_percent, commission_amount,
			exchange_rate, final_amount, calculation_detail, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, modified_at`,
		req.OwnerID, req.ShippingLineID, req.Type, req.BillOfLading, req.Container,
		req.PayerDocument, req.PayerDocType, req.BaseAmount, req.CommissionPercent,
		req.CommissionAmount, req.ExchangeRate, req.FinalAmount, req.CalculationDetail,
		req.Status, req.CreatedBy,
	).Scan(&req.ID, &req.CreatedAt, &req.ModifiedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a request for container %s was already filed today",
				apperr.ErrConflict, req.Container)
		}
		return fmt.Errorf("insert request: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1 AND deleted_at IS NULL`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// Update recomputes-and-replaces the whole business row: descriptive fields,
// the financial snapshot and the modified-by audit column. Status and
// attachment references are changed through their dedicated methods.
func (r *RequestRepository) Update(ctx context.Context, req *model.Request) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET
			shipping_line_id = $2, type = $3, bill_of_lading = $4, container = $5,
			payer_document = $6, payer_doc_type = $7, base_amount = $8,
			commission_percent = $9, commission_amount = $10, exchange_rate = $11,
			final_amount = $12, calculation_detail = $13, modified_by = $14,
			modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		req.ID, req.ShippingLineID, req.Type, req.BillOfLading, req.Container,
		req.PayerDocument, req.PayerDocType, req.BaseAmount, req.CommissionPercent,
		req.CommissionAmount, req.ExchangeRate, req.FinalAmount, req.CalculationDetail,
		req.ModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, req.ID)
	}
	return nil
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RequestStatus, modifiedBy uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET status = $2, modified_by = $3, modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, status, modifiedBy)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *RequestRepository) SetAttachment(ctx context.Context, id uuid.UUID, kind model.AttachmentKind, ref string, modifiedBy uuid.UUID) error {
	var column string
	switch kind {
	case model.AttachmentProof:
		column = "proof_ref"
	case model.AttachmentInvoice:
		column = "invoice_ref"
	case model.AttachmentSupplement:
		column = "supplement_ref"
	default:
		return fmt.Errorf("%w: attachment kind %q", apperr.ErrNotFound, kind)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET `+column+` = $2, modified_by = $3, modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, ref, modifiedBy)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	return nil
}

// SetAttachmentStatus updates an attachment reference and the status in one
// statement, for the proof and invoice uploads that drive a transition.
func (r *RequestRepository) SetAttachmentStatus(ctx context.Context, id uuid.UUID, kind model.AttachmentKind, ref string, status model.RequestStatus, modifiedBy uuid.UUID) error {
	var column string
	switch kind {
	case model.AttachmentProof:
		column = "proof_ref"
	case model.AttachmentInvoice:
		column = "invoice_ref"
	default:
		return fmt.Errorf("%w: attachment kind %q does not drive a transition", apperr.ErrNotFound, kind)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET `+column+` = $2, status = $3, modified_by = $4, modified_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, ref, status, modifiedBy)
	if err != nil {
		return fmt.Errorf("set %s with status: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *RequestRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET deleted_by = $2, deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, deletedBy)
	if err != nil {
		return fmt.Errorf("soft delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *RequestRepository) List(ctx context.Context, f ListFilter) ([]model.Request, int, error) {
	where := `WHERE deleted_at IS NULL
		AND ($1::uuid IS NULL OR owner_id = $1)
		AND ($2::uuid IS NULL OR shipping_line_id = $2)
		AND ($3 = '' OR type = $3)
		AND ($4 = '' OR status = $4)
		AND ($5 = '' OR bill_of_lading ILIKE '%' || $5 || '%')
		AND ($6 = '' OR container ILIKE '%' || $6 || '%')
		AND ($7 <> 'today' OR created_at::date = CURRENT_DATE)
		AND ($7 <> 'history' OR created_at::date < CURRENT_DATE)`
	args := []any{f.OwnerID, f.ShippingLineID, f.Type, f.Status, f.BillOfLading, f.Container, f.Window}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM requests `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM requests `+where+`
		ORDER BY created_at DESC LIMIT $8 OFFSET $9`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate requests: %w", err)
	}

	return out, total, nil
}

// Stats aggregates counts per status and count/total per type, optionally
// scoped to one owner.
func (r *RequestRepository) Stats(ctx context.Context, ownerID *uuid.UUID) (*model.RequestStats, error) {
	stats := &model.RequestStats{ByStatus: make(map[model.RequestStatus]int)}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM requests
		WHERE deleted_at IS NULL AND ($1::uuid IS NULL OR owner_id = $1)
		GROUP BY status`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("status stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status model.RequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status stat: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status stats: %w", err)
	}

	typeRows, err := r.pool.Query(ctx,
		`SELECT type, COUNT(*), COALESCE(SUM(final_amount), 0) FROM requests
		WHERE deleted_at IS NULL AND ($1::uuid IS NULL OR owner_id = $1)
		GROUP BY type ORDER BY type`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("type stats: %w", err)
	}
	defer typeRows.Close()

	for typeRows.Next() {
		var ts model.TypeStat
		var total decimal.Decimal
		if err := typeRows.Scan(&ts.Type, &ts.Count, &total); err != nil {
			return nil, fmt.Errorf("scan type stat: %w", err)
		}
		ts.TotalAmount = total
		stats.ByType = append(stats.ByType, ts)
	}
	if err := typeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*model.Request, error) {
	var req model.Request
	err := row.Scan(
		&req.ID, &req.OwnerID, &req.ShippingLineID, &req.Type, &req.BillOfLading,
		&req.Container, &req.PayerDocument, &req.PayerDocType, &req.BaseAmount,
		&req.CommissionPercent, &req.CommissionAmount, &req.ExchangeRate,
		&req.FinalAmount, &req.CalculationDetail, &req.Status, &req.ProofRef,
		&req.InvoiceRef, &req.SupplementRef, &req.CreatedBy, &req.ModifiedBy,
		&req.DeletedBy, &req.CreatedAt, &req.ModifiedAt, &req.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
