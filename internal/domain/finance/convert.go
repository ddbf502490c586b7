// Package finance contiene los servicios puros del núcleo financiero:
// conversión de monedas vía pivote USD, agregación de líneas de cotización
// y aplicación ordenada de fees. Ninguna función de este paquete muta sus
// entradas ni toca I/O; son seguras de invocar en cada lectura.
package finance

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

// Convert convierte amount de una moneda a otra usando la tabla de tasas dada.
//
//   - Si from == to devuelve amount sin tocar (evita error de punto flotante innecesario).
//   - Una tasa ausente o no positiva cae a la tabla de respaldo y, en último
//     caso, a la identidad 1.0 — esto cierra la clase de falla conocida de
//     división por cero con datos de tasas corruptos o incompletos.
//   - Calcula vía pivote USD: (amount / fromRate) * toRate.
//   - Redondea a 2 decimales para evitar artefactos de visualización.
//
// Nunca retorna error: los totales monetarios siempre deben renderizar algo.
func Convert(amount decimal.Decimal, from, to string, rates entity.RateTable) decimal.Decimal {
	if from == to {
		return amount
	}

	fromRate := rateFor(from, rates)
	toRate := rateFor(to, rates)

	return amount.Div(fromRate).Mul(toRate).Round(2)
}

// ConvertFloat normaliza un monto de la frontera JSON/HTTP antes de convertir:
// NaN e Infinity colapsan a 0 en lugar de propagarse a los totales.
func ConvertFloat(amount float64, from, to string, rates entity.RateTable) decimal.Decimal {
	return Convert(DecimalFromFloat(amount), from, to, rates)
}

// DecimalFromFloat convierte un float de la frontera a decimal, colapsando
// valores no finitos a 0. Es el único punto donde el núcleo ve floats.
func DecimalFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// rateFor busca la tasa de una moneda: tabla dada -> tabla de respaldo -> identidad.
// Solo tasas estrictamente positivas son usables.
func rateFor(code string, rates entity.RateTable) decimal.Decimal {
	if r, ok := rates[code]; ok && r.IsPositive() {
		return r
	}
	if r, ok := entity.FallbackRate(code); ok && r.IsPositive() {
		return r
	}
	return decimal.NewFromInt(1)
}
