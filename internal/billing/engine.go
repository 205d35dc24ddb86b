// Package billing computes the financial snapshot of a payment request from
// its type, the shipping line's tariff and the current rate configuration.
// The computation is a pure function of its inputs; all monetary arithmetic
// uses shopspring decimals so small values (gate-in totals sit well below one
// local-currency unit) survive without binary-float drift.
package billing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

var (
	// SecondarySurcharge is added to the tariff base of every gate-in
	// request, in secondary-currency units.
	SecondarySurcharge = decimal.NewFromInt(6000)

	// LocalSurcharge is added to the converted total of demurrage and
	// release requests, in local-currency units.
	LocalSurcharge = decimal.NewFromInt(50)

	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Input carries everything a snapshot computation depends on. USDAmount and
// DeclaredAmount are nil when the caller supplied nothing. PriorDetail is the
// stored breakdown of the request being edited; on recomputation without a
// fresh USD amount the engine reuses the amount recorded there.
type Input struct {
	Type           model.RequestType
	USDAmount      *decimal.Decimal
	DeclaredAmount *decimal.Decimal
	Tariff         *model.Tariff
	Rates          model.RateConfig
	PriorDetail    json.RawMessage
}

// Snapshot is the persisted result: the numeric columns plus the breakdown
// serialized for audit.
type Snapshot struct {
	BaseAmount        decimal.Decimal
	CommissionPercent decimal.Decimal
	CommissionAmount  decimal.Decimal
	ExchangeRate      decimal.Decimal
	FinalAmount       decimal.Decimal
	Detail            json.RawMessage
}

type gateInDetail struct {
	Type              string          `json:"type"`
	TariffBase        decimal.Decimal `json:"tariff_base"`
	Surcharge         decimal.Decimal `json:"surcharge"`
	BaseAmount        decimal.Decimal `json:"base_amount"`
	AltRate           decimal.Decimal `json:"alt_rate"`
	EffectiveRate     decimal.Decimal `json:"effective_rate"`
	LocalValue        decimal.Decimal `json:"local_value"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	TotalFinal        decimal.Decimal `json:"total_final"`
}

type usdDetail struct {
	Type              string          `json:"type"`
	USDAmount         decimal.Decimal `json:"usd_amount"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionUSD     decimal.Decimal `json:"commission_usd"`
	TotalUSD          decimal.Decimal `json:"total_usd"`
	USDRate           decimal.Decimal `json:"usd_rate"`
	LocalValue        decimal.Decimal `json:"local_value"`
	Surcharge         decimal.Decimal `json:"surcharge"`
	TotalFinal        decimal.Decimal `json:"total_final"`
}

type turnsDetail struct {
	Type           string          `json:"type"`
	DeclaredAmount decimal.Decimal `json:"declared_amount"`
	TotalFinal     decimal.Decimal `json:"total_final"`
}

// ComputeSnapshot runs the branch for the request type and returns the full
// snapshot. Gate-in requires a tariff; demurrage and release require a
// non-negative USD amount (fresh or recorded in PriorDetail); turns is a
// pass-through of the declared amount.
func ComputeSnapshot(in Input) (*Snapshot, error) {
	switch in.Type {
	case model.RequestGateIn:
		return computeGateIn(in)
	case model.RequestDemurrage, model.RequestRelease:
		return computeUSD(in)
	case model.RequestTurns:
		return computeTurns(in)
	default:
		return nil, fmt.Errorf("%w: unknown request type %q", apperr.ErrInvalidAmount, in.Type)
	}
}

func computeGateIn(in Input) (*Snapshot, error) {
	if in.Tariff == nil {
		return nil, fmt.Errorf("%w: no tariff for shipping line", apperr.ErrNotFound)
	}

	base := in.Tariff.BaseAmount.Add(SecondarySurcharge)
	effectiveRate := in.Rates.AltToLocalRate.Div(thousand)
	localValue := base.Mul(effectiveRate)
	commission := localValue.Mul(in.Rates.CommissionPercent.Div(hundred))
	total := localValue.Add(commission)

	detail, err := json.Marshal(gateInDetail{
		Type:              string(model.RequestGateIn),
		TariffBase:        in.Tariff.BaseAmount,
		Surcharge:         SecondarySurcharge,
		BaseAmount:        base,
		AltRate:           in.Rates.AltToLocalRate,
		EffectiveRate:     effectiveRate,
		LocalValue:        localValue,
		CommissionPercent: in.Rates.CommissionPercent,
		CommissionAmount:  commission,
		TotalFinal:        total,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gate-in detail: %w", err)
	}

	return &Snapshot{
		BaseAmount:        base,
		CommissionPercent: in.Rates.CommissionPercent,
		CommissionAmount:  commission,
		ExchangeRate:      in.Rates.AltToLocalRate,
		FinalAmount:       total,
		Detail:            detail,
	}, nil
}

func computeUSD(in Input) (*Snapshot, error) {
	usd, err := resolveUSDAmount(in)
	if err != nil {
		return nil, err
	}

	commissionUSD := usd.Mul(in.Rates.CommissionPercent.Div(hundred))
	totalUSD := usd.Add(commissionUSD)
	localValue := totalUSD.Mul(in.Rates.USDToLocalRate)
	total := localValue.Add(LocalSurcharge)

	detail, err := json.Marshal(usdDetail{
		Type:              string(in.Type),
		USDAmount:         usd,
		CommissionPercent: in.Rates.CommissionPercent,
		CommissionUSD:     commissionUSD,
		TotalUSD:          totalUSD,
		USDRate:           in.Rates.USDToLocalRate,
		LocalValue:        localValue,
		Surcharge:         LocalSurcharge,
		TotalFinal:        total,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s detail: %w", in.Type, err)
	}

	return &Snapshot{
		BaseAmount:        localValue,
		CommissionPercent: in.Rates.CommissionPercent,
		CommissionAmount:  commissionUSD,
		ExchangeRate:      in.Rates.USDToLocalRate,
		FinalAmount:       total,
		Detail:            detail,
	}, nil
}

// resolveUSDAmount prefers the freshly supplied amount and falls back to the
// usd_amount recorded in the stored breakdown, so edits do not force the
// caller to restate a value that has not changed.
func resolveUSDAmount(in Input) (decimal.Decimal, error) {
	if in.USDAmount != nil {
		if in.USDAmount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: USD amount must not be negative", apperr.ErrInvalidAmount)
		}
		return *in.USDAmount, nil
	}

	if len(in.PriorDetail) > 0 {
		var prior struct {
			USDAmount *decimal.Decimal `json:"usd_amount"`
		}
		if err := json.Unmarshal(in.PriorDetail, &prior); err == nil && prior.USDAmount != nil {
			if prior.USDAmount.IsNegative() {
				return decimal.Zero, fmt.Errorf("%w: recorded USD amount is negative", apperr.ErrInvalidAmount)
			}
			return *prior.USDAmount, nil
		}
	}

	return decimal.Zero, fmt.Errorf("%w: a USD amount is required for %s requests", apperr.ErrInvalidAmount, in.Type)
}

// resolveDeclaredAmount mirrors resolveUSDAmount for the turns branch: a
// fresh amount wins, then the declared_amount recorded in the stored
// breakdown, so an edit that touches only descriptive fields keeps the
// prior total. With neither the amount defaults to zero.
func resolveDeclaredAmount(in Input) decimal.Decimal {
	if in.DeclaredAmount != nil {
		return *in.DeclaredAmount
	}

	if len(in.PriorDetail) > 0 {
		var prior struct {
			DeclaredAmount *decimal.Decimal `json:"declared_amount"`
		}
		if err := json.Unmarshal(in.PriorDetail, &prior); err == nil && prior.DeclaredAmount != nil {
			return *prior.DeclaredAmount
		}
	}

	return decimal.Zero
}

func computeTurns(in Input) (*Snapshot, error) {
	declared := resolveDeclaredAmount(in)
	if declared.IsNegative() {
		return nil, fmt.Errorf("%w: declared amount must not be negative", apperr.ErrInvalidAmount)
	}

	detail, err := json.Marshal(turnsDetail{
		Type:           string(model.RequestTurns),
		DeclaredAmount: declared,
		TotalFinal:     declared,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal turns detail: %w", err)
	}

	return &Snapshot{
		BaseAmount:        declared,
		CommissionPercent: decimal.Zero,
		CommissionAmount:  decimal.Zero,
		ExchangeRate:      decimal.Zero,
		FinalAmount:       declared,
		Detail:            detail,
	}, nil
}
