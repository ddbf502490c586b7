package finance_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

func testRates() entity.RateTable {
	return entity.RateTable{
		"USD": decimal.NewFromInt(1),
		"GBP": decimal.RequireFromString("0.79"),
		"MYR": decimal.RequireFromString("4.47"),
		"IDR": decimal.NewFromInt(15850),
	}
}

// TestConvert_Identidad: convert(x, C, C) == x para toda moneda, sin lookup de tasas.
func TestConvert_Identidad(t *testing.T) {
	amount := decimal.RequireFromString("123.456")

	for _, code := range []string{"USD", "GBP", "MYR", "IDR", "XXX"} {
		got := finance.Convert(amount, code, code, testRates())
		assert.True(t, amount.Equal(got),
			"la conversión %s->%s debe devolver el monto sin tocar", code, code)
	}

	// Identidad incluso con tabla vacía: no hay lookup que pueda fallar.
	got := finance.Convert(amount, "GBP", "GBP", nil)
	assert.True(t, amount.Equal(got))
}

// TestConvert_IdaYVuelta: convertir A->B->A retorna el monto original dentro de
// la tolerancia de redondeo (±0.01).
func TestConvert_IdaYVuelta(t *testing.T) {
	rates := testRates()
	tolerance := decimal.RequireFromString("0.01")

	cases := []struct {
		from, to string
		amount   string
	}{
		{"USD", "GBP", "100"},
		{"GBP", "MYR", "250.75"},
		{"MYR", "IDR", "19.99"},
		{"USD", "IDR", "0.37"},
	}
	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		there := finance.Convert(amount, tc.from, tc.to, rates)
		back := finance.Convert(there, tc.to, tc.from, rates)

		diff := back.Sub(amount).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"%s %s->%s->%s: esperaba ±0.01, diff=%s", tc.amount, tc.from, tc.to, tc.from, diff)
	}
}

// TestConvert_TasaCeroONegativa: una tasa corrupta (<= 0) cae a la tabla de
// respaldo o a la identidad; el resultado siempre es finito y no negativo.
func TestConvert_TasaCeroONegativa(t *testing.T) {
	rates := entity.RateTable{
		"USD": decimal.NewFromInt(1),
		"GBP": decimal.Zero,             // corrupta: cero
		"MYR": decimal.NewFromInt(-3),   // corrupta: negativa
		"ZZZ": decimal.NewFromInt(-100), // corrupta y sin respaldo
	}

	amount := decimal.NewFromInt(100)

	// GBP cae al respaldo (0.79): 100/0.79*1 redondeado.
	got := finance.Convert(amount, "GBP", "USD", rates)
	assert.True(t, got.IsPositive(), "tasa cero debe sustituirse, no dividir por cero")
	assert.True(t, got.Equal(decimal.RequireFromString("126.58")), "got=%s", got)

	// MYR negativa cae al respaldo (4.47).
	got = finance.Convert(amount, "USD", "MYR", rates)
	assert.True(t, got.Equal(decimal.RequireFromString("447")), "got=%s", got)

	// ZZZ sin respaldo: identidad 1.0 en ambos lados.
	got = finance.Convert(amount, "ZZZ", "USD", rates)
	assert.True(t, got.Equal(decimal.NewFromInt(100)), "sin tasa ni respaldo debe usar identidad, got=%s", got)
	assert.False(t, got.IsNegative())
}

// TestConvert_PivoteUSD verifica el cálculo (amount / fromRate) * toRate.
func TestConvert_PivoteUSD(t *testing.T) {
	rates := testRates()

	// 79 GBP -> USD: 79/0.79 = 100
	got := finance.Convert(decimal.NewFromInt(79), "GBP", "USD", rates)
	require.True(t, got.Equal(decimal.NewFromInt(100)), "got=%s", got)

	// 100 USD -> MYR: 100*4.47 = 447
	got = finance.Convert(decimal.NewFromInt(100), "USD", "MYR", rates)
	require.True(t, got.Equal(decimal.NewFromInt(447)), "got=%s", got)
}

// TestConvert_Redondeo: el resultado se redondea a 2 decimales para no mostrar
// artefactos tipo 99.99999999997.
func TestConvert_Redondeo(t *testing.T) {
	rates := entity.RateTable{
		"USD": decimal.NewFromInt(1),
		"ABC": decimal.RequireFromString("3"),
	}
	got := finance.Convert(decimal.NewFromInt(100), "ABC", "USD", rates)
	assert.True(t, got.Equal(decimal.RequireFromString("33.33")), "got=%s", got)
	assert.True(t, got.Exponent() >= -2, "no debe haber más de 2 decimales")
}

// TestConvertFloat_NoFinitos: NaN/Inf de la frontera colapsan a 0, nunca se propagan.
func TestConvertFloat_NoFinitos(t *testing.T) {
	rates := testRates()

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got := finance.ConvertFloat(f, "USD", "GBP", rates)
		assert.True(t, got.IsZero(), "un monto no finito debe convertirse en 0, got=%s", got)
	}

	got := finance.ConvertFloat(100, "USD", "GBP", rates)
	assert.True(t, got.Equal(decimal.NewFromInt(79)), "got=%s", got)
}
