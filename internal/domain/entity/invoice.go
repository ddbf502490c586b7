package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain"
)

// Estados del ciclo de vida de una factura.
// draft -> sent -> (partial* ->) paid; draft|sent -> cancelled (terminal).
// "overdue" es un estado derivado de visualización: se calcula en lectura y
// nunca se persiste, porque el estado real (ej. partial) debe conservarse
// debajo de la insignia de vencida para la lógica de seguimiento.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
	InvoiceStatusOverdue   = "overdue" // solo derivado, jamás almacenado
)

// Métodos de pago aceptados en el libro de pagos.
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
	PaymentMethodCash         = "cash"
	PaymentMethodCheck        = "check"
	PaymentMethodOther        = "other"
)

// Payment pago registrado contra una factura. Inmutable una vez registrado:
// se agrega, nunca se edita ni se elimina, para preservar un historial auditable.
type Payment struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// InvoiceLine línea de factura copiada textualmente de la cotización origen.
// No se recalcula después de emitida.
type InvoiceLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Days        decimal.Decimal `json:"days"`
	Rate        decimal.Decimal `json:"rate"`
	Total       decimal.Decimal `json:"total"`
	Section     string          `json:"section,omitempty"`
	Subsection  string          `json:"subsection,omitempty"`
}

// Invoice factura. Currency y Total se fijan en la creación: una vez emitida,
// el total no se desplaza aunque la cotización origen o las tasas de cambio
// cambien después. LockedRates captura las tasas vigentes al crearla para
// cualquier conversión posterior de su propio total.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	QuoteID       string          `json:"quote_id,omitempty"`
	QuoteNumber   string          `json:"quote_number,omitempty"`
	ClientID      string          `json:"client_id,omitempty"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email,omitempty"`
	ClientAddress string          `json:"client_address,omitempty"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	LineItems     []InvoiceLine   `json:"line_items"`
	Payments      []Payment       `json:"payments"`
	LockedRates   *RateSnapshot   `json:"locked_rates,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Balance saldo pendiente. Puede ser negativo si se permitió un sobrepago
// (saldo a favor del cliente).
func (i *Invoice) Balance() decimal.Decimal {
	return i.Total.Sub(i.PaidAmount)
}

// IsClosed indica si la factura ya no admite cambios de estado.
func (i *Invoice) IsClosed() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// DisplayStatus estado para mostrar: si la factura no está pagada ni cancelada
// y su fecha de vencimiento ya pasó, se presenta como "overdue" sin tocar el
// estado almacenado.
func (i *Invoice) DisplayStatus(now time.Time) string {
	if i.IsOverdue(now) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// IsOverdue regla derivada de vencimiento (solo lectura).
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.IsClosed() {
		return false
	}
	return !i.DueDate.IsZero() && i.DueDate.Before(now)
}

// ApplyPayment agrega un pago inmutable al libro y recalcula el estado derivado:
//
//	PaidAmount = Σ payments.Amount
//	PaidAmount >= Total    -> paid (el sobrepago se admite como saldo a favor;
//	                          un total de cero queda pagado con el primer pago)
//	0 < PaidAmount < Total -> partial
//
// Un pago con Amount <= 0 se rechaza antes de agregarse.
func (i *Invoice) ApplyPayment(p Payment) error {
	if !p.Amount.IsPositive() {
		return domain.ErrInvalidPayment
	}
	if i.Status == InvoiceStatusCancelled {
		return domain.ErrConflict
	}

	i.Payments = append(i.Payments, p)

	paid := decimal.Zero
	for _, pay := range i.Payments {
		paid = paid.Add(pay.Amount)
	}
	i.PaidAmount = paid

	switch {
	case paid.GreaterThanOrEqual(i.Total):
		i.Status = InvoiceStatusPaid
		d := p.Date
		i.PaidDate = &d
	case paid.IsPositive():
		i.Status = InvoiceStatusPartial
	}

	i.UpdatedAt = p.RecordedAt
	return nil
}
