package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/navipay/port-requests/internal/model"
)

type CreateRequestRequest struct {
	ShippingLineID uuid.UUID         `json:"shipping_line_id" binding:"required"`
	Type           model.RequestType `json:"type" binding:"required,oneof=gate_in demurrage release turns"`
	USDAmount      *decimal.Decimal  `json:"usd_amount"`
	DeclaredAmount *decimal.Decimal  `json:"declared_amount"`
	BillOfLading   string            `json:"bill_of_lading" binding:"max=100"`
	Container      string            `json:"container" binding:"max=100"`
	PayerDocument  string            `json:"payer_document" binding:"max=20"`
	PayerDocType   string            `json:"payer_doc_type" binding:"omitempty,oneof=CI NIT RUT"`
}

// UpdateRequestRequest carries a partial edit; nil fields keep their stored
// value. The financial snapshot is always recomputed from current rates, so
// there are no snapshot fields here.
type UpdateRequestRequest struct {
	ShippingLineID *uuid.UUID         `json:"shipping_line_id"`
	Type           *model.RequestType `json:"type" binding:"omitempty,oneof=gate_in demurrage release turns"`
	USDAmount      *decimal.Decimal   `json:"usd_amount"`
	DeclaredAmount *decimal.Decimal   `json:"declared_amount"`
	BillOfLading   *string            `json:"bill_of_lading" binding:"omitempty,max=100"`
	Container      *string            `json:"container" binding:"omitempty,max=100"`
	PayerDocument  *string            `json:"payer_document" binding:"omitempty,max=20"`
	PayerDocType   *string            `json:"payer_doc_type" binding:"omitempty,oneof=CI NIT RUT"`
}

type ChangeStateRequest struct {
	Status model.RequestStatus `json:"status" binding:"required,oneof=pending uploaded verified paid void"`
}

type CreateTariffRequest struct {
	ShippingLineID uuid.UUID       `json:"shipping_line_id" binding:"required"`
	BaseAmount     decimal.Decimal `json:"base_amount" binding:"required"`
}

type UpdateTariffRequest struct {
	BaseAmount decimal.Decimal `json:"base_amount" binding:"required"`
}

type UpdateRateConfigRequest struct {
	CommissionPercent decimal.Decimal `json:"commission_percent" binding:"required"`
	USDToLocalRate    decimal.Decimal `json:"usd_to_local_rate" binding:"required"`
	AltToLocalRate    decimal.Decimal `json:"alt_to_local_rate" binding:"required"`
}
