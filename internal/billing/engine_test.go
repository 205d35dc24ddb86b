package billing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testRates() model.RateConfig {
	return model.RateConfig{
		CommissionPercent: dec("3.0"),
		USDToLocalRate:    dec("6.96"),
		AltToLocalRate:    dec("0.008"),
	}
}

func TestComputeSnapshot_GateIn(t *testing.T) {
	t.Run("happy: worked example with sub-unit totals", func(t *testing.T) {
		snap, err := ComputeSnapshot(Input{
			Type:   model.RequestGateIn,
			Tariff: &model.Tariff{BaseAmount: dec("700")},
			Rates:  testRates(),
		})
		require.NoError(t, err)

		// (700 + 6000) * (0.008/1000) * 1.03
		assert.True(t, snap.BaseAmount.Equal(dec("6700")), "base %s", snap.BaseAmount)
		assert.True(t, snap.CommissionAmount.Equal(dec("0.001608")), "commission %s", snap.CommissionAmount)
		assert.True(t, snap.ExchangeRate.Equal(dec("0.008")))
		assert.True(t, snap.FinalAmount.Equal(dec("0.055208")), "final %s", snap.FinalAmount)

		var detail map[string]decimal.Decimal
		require.NoError(t, json.Unmarshal(stripType(t, snap.Detail), &detail))
		assert.True(t, detail["tariff_base"].Equal(dec("700")))
		assert.True(t, detail["surcharge"].Equal(dec("6000")))
		assert.True(t, detail["effective_rate"].Equal(dec("0.000008")))
		assert.True(t, detail["local_value"].Equal(dec("0.0536")))
		assert.True(t, detail["total_final"].Equal(snap.FinalAmount))
	})

	t.Run("happy: final equals breakdown product", func(t *testing.T) {
		rates := model.RateConfig{
			CommissionPercent: dec("7.5"),
			USDToLocalRate:    dec("6.96"),
			AltToLocalRate:    dec("1.25"),
		}
		snap, err := ComputeSnapshot(Input{
			Type:   model.RequestGateIn,
			Tariff: &model.Tariff{BaseAmount: dec("15000")},
			Rates:  rates,
		})
		require.NoError(t, err)

		want := dec("21000").
			Mul(dec("1.25").Div(dec("1000"))).
			Mul(dec("1.075"))
		assert.True(t, snap.FinalAmount.Equal(want), "got %s want %s", snap.FinalAmount, want)
		assert.False(t, snap.FinalAmount.IsNegative())
	})

	t.Run("bad: missing tariff", func(t *testing.T) {
		_, err := ComputeSnapshot(Input{
			Type:  model.RequestGateIn,
			Rates: testRates(),
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestComputeSnapshot_USD(t *testing.T) {
	t.Run("happy: demurrage worked example", func(t *testing.T) {
		snap, err := ComputeSnapshot(Input{
			Type:      model.RequestDemurrage,
			USDAmount: decPtr("1000"),
			Rates:     testRates(),
		})
		require.NoError(t, err)

		assert.True(t, snap.CommissionAmount.Equal(dec("30")), "commission %s", snap.CommissionAmount)
		assert.True(t, snap.BaseAmount.Equal(dec("7168.8")), "local value %s", snap.BaseAmount)
		assert.True(t, snap.FinalAmount.Equal(dec("7218.8")), "final %s", snap.FinalAmount)
		assert.True(t, snap.ExchangeRate.Equal(dec("6.96")))

		var detail map[string]decimal.Decimal
		require.NoError(t, json.Unmarshal(stripType(t, snap.Detail), &detail))
		assert.True(t, detail["usd_amount"].Equal(dec("1000")))
		assert.True(t, detail["commission_usd"].Equal(dec("30")))
		assert.True(t, detail["total_usd"].Equal(dec("1030")))
		assert.True(t, detail["surcharge"].Equal(dec("50")))
	})

	t.Run("happy: release uses the same branch", func(t *testing.T) {
		snap, err := ComputeSnapshot(Input{
			Type:      model.RequestRelease,
			USDAmount: decPtr("200.50"),
			Rates:     testRates(),
		})
		require.NoError(t, err)

		want := dec("200.50").Mul(dec("1.03")).Mul(dec("6.96")).Add(dec("50"))
		assert.True(t, snap.FinalAmount.Equal(want), "got %s want %s", snap.FinalAmount, want)
	})

	t.Run("happy: zero amount yields only the surcharge", func(t *testing.T) {
		snap, err := ComputeSnapshot(Input{
			Type:      model.RequestDemurrage,
			USDAmount: decPtr("0"),
			Rates:     testRates(),
		})
		require.NoError(t, err)
		assert.True(t, snap.FinalAmount.Equal(dec("50")))
	})

	t.Run("happy: recompute falls back to recorded usd_amount", func(t *testing.T) {
		first, err := ComputeSnapshot(Input{
			Type:      model.RequestDemurrage,
			USDAmount: decPtr("1000"),
			Rates:     testRates(),
		})
		require.NoError(t, err)

		// Rates changed between creation and edit; no fresh amount given.
		newRates := testRates()
		newRates.USDToLocalRate = dec("7.10")
		second, err := ComputeSnapshot(Input{
			Type:        model.RequestDemurrage,
			Rates:       newRates,
			PriorDetail: first.Detail,
		})
		require.NoError(t, err)

		want := dec("1030").Mul(dec("7.10")).Add(dec("50"))
		assert.True(t, second.FinalAmount.Equal(want), "got %s want %s", second.FinalAmount, want)
	})

	t.Run("bad: missing amount with no prior detail", func(t *testing.T) {
		_, err := ComputeSnapshot(Input{
			Type:  model.RequestDemurrage,
			Rates: testRates(),
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	})

	t.Run("bad: negative amount", func(t *testing.T) {
		_, err := ComputeSnapshot(Input{
			Type:      model.RequestRelease,
			USDAmount: decPtr("-5"),
			Rates:     testRates(),
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	})

	t.Run("bad: prior detail without usd_amount", func(t *testing.T) {
		_, err := ComputeSnapshot(Input{
			Type:        model.RequestDemurrage,
			Rates:       testRates(),
			PriorDetail: json.RawMessage(`{"type":"turns","declared_amount":"10"}`),
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	})
}

func TestComputeSnapshot_Turns(t *testing.T) {
	t.Run("happy: declared amount passes through", func(t *testing.T) {
		snap, err := ComputeSnapshot(Input{
			Type:           model.RequestTurns,
			DeclaredAmount: decPtr("123.45"),
			Rates:          testRates(),
		})
		require.NoError(t, err)
		assert.True(t, snap.FinalAmount.Equal(dec("123.45")))
		assert.True(t, snap.CommissionAmount.IsZero())
	})

	t.Run("happy: defaults to zero", func(t *testing.T) {
		snap, err := ComputeSnapshot(Input{
			Type:  model.RequestTurns,
			Rates: testRates(),
		})
		require.NoError(t, err)
		assert.True(t, snap.FinalAmount.IsZero())
	})

	t.Run("happy: recompute keeps the recorded declared amount", func(t *testing.T) {
		first, err := ComputeSnapshot(Input{
			Type:           model.RequestTurns,
			DeclaredAmount: decPtr("123.45"),
			Rates:          testRates(),
		})
		require.NoError(t, err)

		// An edit that touches only descriptive fields passes no amount.
		second, err := ComputeSnapshot(Input{
			Type:        model.RequestTurns,
			Rates:       testRates(),
			PriorDetail: first.Detail,
		})
		require.NoError(t, err)
		assert.True(t, second.FinalAmount.Equal(dec("123.45")),
			"got %s want 123.45", second.FinalAmount)
	})

	t.Run("bad: negative declared amount", func(t *testing.T) {
		_, err := ComputeSnapshot(Input{
			Type:           model.RequestTurns,
			DeclaredAmount: decPtr("-1"),
			Rates:          testRates(),
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
	})
}

func TestComputeSnapshot_UnknownType(t *testing.T) {
	_, err := ComputeSnapshot(Input{Type: "storage", Rates: testRates()})
	assert.True(t, errors.Is(err, apperr.ErrInvalidAmount))
}

// stripType removes the non-numeric "type" field so a breakdown can be
// decoded into a map of decimals.
func stripType(t *testing.T, detail json.RawMessage) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(detail, &m))
	delete(m, "type")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return out
}
