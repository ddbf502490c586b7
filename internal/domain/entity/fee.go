package entity

import "github.com/shopspring/decimal"

// FeeKind tipo de cargo adicional sobre una cotización.
type FeeKind string

const (
	FeePercentage FeeKind = "percentage" // Value es un porcentaje (ej. 10 = 10%)
	FeeFixed      FeeKind = "fixed"      // Value es un monto plano en la moneda del documento
)

// FeeBasis define sobre qué subtotal se calcula un fee porcentual.
//   - pre_tax:  sobre el subtotal base de líneas, sin fees previos.
//   - post_tax: sobre el subtotal acumulado al momento de aplicarse (incluye fees previos).
type FeeBasis string

const (
	FeeBasisPreTax  FeeBasis = "pre_tax"
	FeeBasisPostTax FeeBasis = "post_tax"
)

// Fee definición de un cargo configurado. Un Value negativo representa un descuento.
type Fee struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Kind  FeeKind         `json:"kind"`
	Basis FeeBasis        `json:"basis"`
	Value decimal.Decimal `json:"value"`
}

// FeeConfig lista ordenada de fees. El orden importa: cada fee porcentual lee el
// subtotal vigente en su turno, por lo que la misma lista en otro orden produce
// un total distinto. El orden se preserva tal como fue configurado.
type FeeConfig []Fee

// FeeLine línea del desglose de fees ya aplicados (para mostrar al usuario).
type FeeLine struct {
	FeeID  string          `json:"fee_id"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}
