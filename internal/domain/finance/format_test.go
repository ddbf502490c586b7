package finance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

func TestFormat_SimboloYSeparadores(t *testing.T) {
	got := finance.Format(d("1234.5"), "USD", finance.DefaultFormatOptions())
	assert.Equal(t, "$1,234.50", got)

	got = finance.Format(d("1234.5"), "GBP", finance.FormatOptions{ShowSymbol: false, Decimals: 2})
	assert.Equal(t, "1,234.50", got)
}

// TestFormat_MonedaSinDecimales: IDR no usa unidad menor; siempre 0 decimales.
func TestFormat_MonedaSinDecimales(t *testing.T) {
	got := finance.Format(d("15850.75"), "IDR", finance.DefaultFormatOptions())
	assert.Equal(t, "Rp15,851", got)
}

// TestFormat_MonedaDesconocida: cae a un string numérico sin símbolo.
func TestFormat_MonedaDesconocida(t *testing.T) {
	got := finance.Format(d("99.9"), "XYZ", finance.DefaultFormatOptions())
	assert.Equal(t, "99.90", got)
}

func TestFormat_Cero(t *testing.T) {
	got := finance.Format(d("0"), "USD", finance.DefaultFormatOptions())
	assert.Equal(t, "$0.00", got)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "$", finance.Symbol("USD"))
	assert.Equal(t, "RM", finance.Symbol("MYR"))
	assert.Equal(t, "XYZ", finance.Symbol("XYZ"), "código desconocido devuelve el propio código")
}
