package finance

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Totals totales derivados de una cotización. Nunca se almacenan: se recalculan
// frescos en cada lectura porque los ítems mutan con frecuencia y jamás deben
// presentarse totales obsoletos.
type Totals struct {
	TotalCharge  decimal.Decimal  // suma de cargos de líneas, antes de fees
	TotalCost    decimal.Decimal  // suma de costos de líneas (los fees no tocan el costo)
	Profit       decimal.Decimal  // TotalCharge - TotalCost
	Margin       decimal.Decimal  // Profit / TotalCharge; 0 cuando TotalCharge es 0
	GrandTotal   decimal.Decimal  // TotalCharge + fees aplicados en orden
	FeeBreakdown []entity.FeeLine // desglose de fees para visualización
}

// LineTotals aporte de un ítem: rate × quantity × days por lado de cargo y costo.
// Quantity/Days en cero se tratan como 1 (un ítem sin multiplicador explícito
// es "una unidad, un día").
func LineTotals(item entity.LineItem) (charge, cost decimal.Decimal) {
	qty := item.Quantity
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	days := item.Days
	if days.IsZero() {
		days = decimal.NewFromInt(1)
	}
	mult := qty.Mul(days)
	return item.RateCharge.Mul(mult), item.RateCost.Mul(mult)
}

// SubsectionTotals suma de los ítems de una subsección.
func SubsectionTotals(items []entity.LineItem) (charge, cost decimal.Decimal) {
	charge, cost = decimal.Zero, decimal.Zero
	for _, item := range items {
		c, k := LineTotals(item)
		charge = charge.Add(c)
		cost = cost.Add(k)
	}
	return charge, cost
}

// SectionTotals suma de todas las subsecciones de una sección.
func SectionTotals(section entity.Section) (charge, cost decimal.Decimal) {
	charge, cost = decimal.Zero, decimal.Zero
	for _, sub := range section.Subsections {
		c, k := SubsectionTotals(sub.Items)
		charge = charge.Add(c)
		cost = cost.Add(k)
	}
	return charge, cost
}

// Aggregate recorre secciones -> subsecciones -> ítems y produce los totales de
// cargo, costo y utilidad, y luego aplica los fees EN ORDEN sobre el lado del
// cargo para obtener el gran total:
//
//   - Un fee porcentual con basis pre_tax se calcula sobre el subtotal base de
//     líneas; con basis post_tax, sobre el subtotal acumulado en su turno
//     (incluye fees anteriores). Por eso el orden de la lista importa.
//   - Un fee fijo agrega su monto plano.
//   - Un Value negativo actúa como descuento.
//
// La función es pura: no muta sections ni fees, y es segura de llamar en cada
// render; los llamadores deben reinvocarla en lugar de cachear el resultado.
func Aggregate(sections []entity.Section, fees entity.FeeConfig) Totals {
	totalCharge, totalCost := decimal.Zero, decimal.Zero
	for _, section := range sections {
		c, k := SectionTotals(section)
		totalCharge = totalCharge.Add(c)
		totalCost = totalCost.Add(k)
	}

	grand := totalCharge
	breakdown := make([]entity.FeeLine, 0, len(fees))
	for _, fee := range fees {
		var amount decimal.Decimal
		switch fee.Kind {
		case entity.FeePercentage:
			base := totalCharge
			if fee.Basis == entity.FeeBasisPostTax {
				base = grand
			}
			amount = base.Mul(fee.Value).Div(hundred)
		case entity.FeeFixed:
			amount = fee.Value
		default:
			continue
		}
		grand = grand.Add(amount)
		breakdown = append(breakdown, entity.FeeLine{
			FeeID:  fee.ID,
			Label:  fee.Label,
			Amount: amount,
		})
	}

	profit := totalCharge.Sub(totalCost)
	margin := decimal.Zero
	if totalCharge.IsPositive() {
		margin = profit.Div(totalCharge)
	}

	return Totals{
		TotalCharge:  totalCharge,
		TotalCost:    totalCost,
		Profit:       profit,
		Margin:       margin,
		GrandTotal:   grand,
		FeeBreakdown: breakdown,
	}
}

// CountItems cantidad total de ítems en todas las secciones.
func CountItems(sections []entity.Section) int {
	count := 0
	for _, section := range sections {
		for _, sub := range section.Subsections {
			count += len(sub.Items)
		}
	}
	return count
}
