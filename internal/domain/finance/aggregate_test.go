package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(charge, cost, qty, days string) entity.LineItem {
	return entity.LineItem{
		RateCharge: d(charge),
		RateCost:   d(cost),
		Quantity:   d(qty),
		Days:       d(days),
	}
}

func sectionsWith(items ...entity.LineItem) []entity.Section {
	return []entity.Section{{
		ID:   "production",
		Name: "Production",
		Subsections: []entity.Subsection{
			{Name: "Crew", Items: items},
		},
	}}
}

// TestAggregate_TotalesBase verifica el ejemplo de referencia:
// [{charge:10,cost:5,qty:2,days:1}, {charge:20,cost:8,qty:1,days:3}]
// -> charge 80, cost 34, profit 46, margin 0.575.
func TestAggregate_TotalesBase(t *testing.T) {
	sections := sectionsWith(
		item("10", "5", "2", "1"),
		item("20", "8", "1", "3"),
	)

	got := finance.Aggregate(sections, nil)

	assert.True(t, got.TotalCharge.Equal(d("80")), "TotalCharge=%s", got.TotalCharge)
	assert.True(t, got.TotalCost.Equal(d("34")), "TotalCost=%s", got.TotalCost)
	assert.True(t, got.Profit.Equal(d("46")), "Profit=%s", got.Profit)
	assert.True(t, got.Margin.Equal(d("0.575")), "Margin=%s", got.Margin)
	assert.True(t, got.GrandTotal.Equal(d("80")), "sin fees, GrandTotal == TotalCharge")
	assert.Empty(t, got.FeeBreakdown)
}

// TestAggregate_DefaultsQuantityDays: quantity/days ausentes (cero) valen 1.
func TestAggregate_DefaultsQuantityDays(t *testing.T) {
	sections := sectionsWith(entity.LineItem{
		RateCharge: d("50"),
		RateCost:   d("20"),
		// Quantity y Days sin definir
	})

	got := finance.Aggregate(sections, nil)

	assert.True(t, got.TotalCharge.Equal(d("50")), "un ítem sin multiplicadores es una unidad por un día")
	assert.True(t, got.TotalCost.Equal(d("20")))
}

// TestAggregate_MargenCeroSinCargo: margin es 0 cuando TotalCharge es 0, nunca
// una división por cero.
func TestAggregate_MargenCeroSinCargo(t *testing.T) {
	got := finance.Aggregate(nil, nil)
	assert.True(t, got.Margin.IsZero())
	assert.True(t, got.TotalCharge.IsZero())

	// Con costo pero sin cargo: profit negativo, margin sigue siendo 0.
	got = finance.Aggregate(sectionsWith(item("0", "10", "1", "1")), nil)
	assert.True(t, got.Margin.IsZero())
	assert.True(t, got.Profit.Equal(d("-10")))
}

// TestAggregate_FeesEnOrden: cada fee lee el subtotal vigente según su basis.
// pre_tax siempre calcula sobre el subtotal base; post_tax sobre el acumulado.
func TestAggregate_FeesEnOrden(t *testing.T) {
	sections := sectionsWith(item("100", "40", "1", "1")) // base 100

	// 10% pre_tax (10) -> fijo 20 -> 5% post_tax sobre 130 (6.5) => 136.5
	fees := entity.FeeConfig{
		{ID: "mgmt", Label: "Management", Kind: entity.FeePercentage, Basis: entity.FeeBasisPreTax, Value: d("10")},
		{ID: "fixed", Label: "Logística", Kind: entity.FeeFixed, Value: d("20")},
		{ID: "tax", Label: "Tax", Kind: entity.FeePercentage, Basis: entity.FeeBasisPostTax, Value: d("5")},
	}

	got := finance.Aggregate(sections, fees)

	require.Len(t, got.FeeBreakdown, 3)
	assert.True(t, got.FeeBreakdown[0].Amount.Equal(d("10")))
	assert.True(t, got.FeeBreakdown[1].Amount.Equal(d("20")))
	assert.True(t, got.FeeBreakdown[2].Amount.Equal(d("6.5")), "post_tax lee el subtotal acumulado (130)")
	assert.True(t, got.GrandTotal.Equal(d("136.5")), "GrandTotal=%s", got.GrandTotal)

	// Los fees no tocan el lado del costo.
	assert.True(t, got.TotalCost.Equal(d("40")))
	assert.True(t, got.Profit.Equal(d("60")))
}

// TestAggregate_BasisCambiaElResultado: el mismo conjunto de fees en otro orden
// produce un gran total distinto cuando hay un porcentual post_tax de por medio.
func TestAggregate_BasisCambiaElResultado(t *testing.T) {
	sections := sectionsWith(item("100", "0", "1", "1"))

	pct := entity.Fee{ID: "p", Label: "Service", Kind: entity.FeePercentage, Basis: entity.FeeBasisPostTax, Value: d("10")}
	fixed := entity.Fee{ID: "f", Label: "Flat", Kind: entity.FeeFixed, Value: d("50")}

	// post_tax 10% antes del fijo: 100*10% = 10 -> 160
	first := finance.Aggregate(sections, entity.FeeConfig{pct, fixed})
	// fijo antes del post_tax 10%: (100+50)*10% = 15 -> 165
	second := finance.Aggregate(sections, entity.FeeConfig{fixed, pct})

	assert.True(t, first.GrandTotal.Equal(d("160")), "first=%s", first.GrandTotal)
	assert.True(t, second.GrandTotal.Equal(d("165")), "second=%s", second.GrandTotal)
	assert.False(t, first.GrandTotal.Equal(second.GrandTotal),
		"el orden de la lista de fees debe cambiar el resultado")

	// Con basis pre_tax el orden deja de importar para el porcentual.
	pct.Basis = entity.FeeBasisPreTax
	third := finance.Aggregate(sections, entity.FeeConfig{fixed, pct})
	assert.True(t, third.GrandTotal.Equal(d("160")), "pre_tax siempre lee la base, got=%s", third.GrandTotal)
}

// TestAggregate_DescuentoNegativo: un Value negativo resta del gran total.
func TestAggregate_DescuentoNegativo(t *testing.T) {
	sections := sectionsWith(item("200", "0", "1", "1"))
	fees := entity.FeeConfig{
		{ID: "disc", Label: "Discount", Kind: entity.FeePercentage, Basis: entity.FeeBasisPreTax, Value: d("-10")},
	}

	got := finance.Aggregate(sections, fees)
	assert.True(t, got.GrandTotal.Equal(d("180")), "GrandTotal=%s", got.GrandTotal)
}

// TestAggregate_EsPura: la función no muta sus entradas; llamadas repetidas
// producen exactamente el mismo resultado (los llamadores recalculan, no cachean).
func TestAggregate_EsPura(t *testing.T) {
	sections := sectionsWith(item("10", "5", "2", "1"))
	fees := entity.FeeConfig{
		{ID: "m", Label: "Mgmt", Kind: entity.FeePercentage, Basis: entity.FeeBasisPreTax, Value: d("10")},
	}

	before := sections[0].Subsections[0].Items[0]
	first := finance.Aggregate(sections, fees)
	second := finance.Aggregate(sections, fees)
	after := sections[0].Subsections[0].Items[0]

	assert.True(t, before.RateCharge.Equal(after.RateCharge), "Aggregate no debe mutar los ítems")
	assert.True(t, before.Quantity.Equal(after.Quantity))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.Margin.Equal(second.Margin))
}

// TestSubsectionTotals y TestCountItems cubren los helpers de visualización.
func TestSubsectionTotals(t *testing.T) {
	charge, cost := finance.SubsectionTotals([]entity.LineItem{
		item("10", "5", "2", "1"),
		item("20", "8", "1", "3"),
	})
	assert.True(t, charge.Equal(d("80")))
	assert.True(t, cost.Equal(d("34")))
}

func TestCountItems(t *testing.T) {
	sections := []entity.Section{
		{Subsections: []entity.Subsection{
			{Items: []entity.LineItem{item("1", "1", "1", "1"), item("2", "1", "1", "1")}},
			{Items: []entity.LineItem{item("3", "1", "1", "1")}},
		}},
		{Subsections: []entity.Subsection{{Items: nil}}},
	}
	assert.Equal(t, 3, finance.CountItems(sections))
}
