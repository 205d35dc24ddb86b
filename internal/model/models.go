package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

type Actor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type RequestType string

const (
	RequestGateIn    RequestType = "gate_in"
	RequestDemurrage RequestType = "demurrage"
	RequestRelease   RequestType = "release"
	RequestTurns     RequestType = "turns"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusUploaded RequestStatus = "uploaded"
	StatusVerified RequestStatus = "verified"
	StatusPaid     RequestStatus = "paid"
	StatusVoid     RequestStatus = "void"
)

type AttachmentKind string

const (
	AttachmentProof      AttachmentKind = "proof"
	AttachmentInvoice    AttachmentKind = "invoice"
	AttachmentSupplement AttachmentKind = "supplement"
)

type ShippingLine struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Tariff is the per-shipping-line base fee, in the secondary currency. At
// most one active tariff exists per line.
type Tariff struct {
	ID             uuid.UUID       `json:"id"`
	ShippingLineID uuid.UUID       `json:"shipping_line_id"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RateConfig is the global commission and exchange-rate configuration. A
// single logical row exists; updates replace it in place and never rewrite
// snapshots already stored on requests.
type RateConfig struct {
	ID                uuid.UUID       `json:"id"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	USDToLocalRate    decimal.Decimal `json:"usd_to_local_rate"`
	AltToLocalRate    decimal.Decimal `json:"alt_to_local_rate"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Request is the payment-request aggregate. The financial snapshot fields
// are derived by the billing engine and never set directly by callers;
// CalculationDetail holds the engine's breakdown as stored JSON so past
// computations stay auditable after the rate configuration changes.
type Request struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	ShippingLineID uuid.UUID       `json:"shipping_line_id"`
	Type           RequestType     `json:"type"`
	BillOfLading   string          `json:"bill_of_lading,omitempty"`
	Container      string          `json:"container,omitempty"`
	PayerDocument  string          `json:"payer_document,omitempty"`
	PayerDocType   string          `json:"payer_doc_type,omitempty"`

	BaseAmount        decimal.Decimal `json:"base_amount"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	CalculationDetail json.RawMessage `json:"calculation_detail,omitempty"`

	Status RequestStatus `json:"status"`

	ProofRef      string `json:"proof_ref,omitempty"`
	InvoiceRef    string `json:"invoice_ref,omitempty"`
	SupplementRef string `json:"supplement_ref,omitempty"`

	CreatedBy  uuid.UUID  `json:"created_by"`
	ModifiedBy *uuid.UUID `json:"modified_by,omitempty"`
	DeletedBy  *uuid.UUID `json:"deleted_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// AttachmentRef returns the stored object key for the given kind, empty when
// no document of that kind is attached.
func (r *Request) AttachmentRef(kind AttachmentKind) string {
	switch kind {
	case AttachmentProof:
		return r.ProofRef
	case AttachmentInvoice:
		return r.InvoiceRef
	case AttachmentSupplement:
		return r.SupplementRef
	}
	return ""
}

func (r *Request) SetAttachmentRef(kind AttachmentKind, ref string) {
	switch kind {
	case AttachmentProof:
		r.ProofRef = ref
	case AttachmentInvoice:
		r.InvoiceRef = ref
	case AttachmentSupplement:
		r.SupplementRef = ref
	}
}

type TypeStat struct {
	Type        RequestType     `json:"type"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type RequestStats struct {
	Total    int        `json:"total"`
	ByStatus map[RequestStatus]int `json:"by_status"`
	ByType   []TypeStat `json:"by_type"`
}
