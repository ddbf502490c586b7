package dto

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

// InvoiceClient datos del cliente al emitir una factura.
type InvoiceClient struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// InvoiceLineDTO línea de factura en la frontera.
type InvoiceLineDTO struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity,omitempty"`
	Days        float64 `json:"days,omitempty"`
	Rate        float64 `json:"rate,omitempty"`
	Section     string  `json:"section,omitempty"`
	Subsection  string  `json:"subsection,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices (factura manual, sin cotización).
type CreateInvoiceRequest struct {
	Client    InvoiceClient    `json:"client"`
	Currency  string           `json:"currency"`
	LineItems []InvoiceLineDTO `json:"line_items"`
	DueDate   string           `json:"due_date,omitempty"` // YYYY-MM-DD; por defecto emisión + 30 días
	Notes     string           `json:"notes,omitempty"`
}

// CreateFromQuoteRequest body para POST /api/invoices/from-quote.
type CreateFromQuoteRequest struct {
	QuoteID string        `json:"quote_id"`
	Client  InvoiceClient `json:"client"`
}

// UpdateInvoiceStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

// RecordPaymentRequest body para POST /api/invoices/:id/payments.
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount"`
	Date      string  `json:"date,omitempty"` // YYYY-MM-DD; por defecto hoy
	Method    string  `json:"method,omitempty"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// InvoiceResponse factura con sus campos derivados de lectura.
type InvoiceResponse struct {
	*entity.Invoice
	DisplayStatus string          `json:"display_status"`
	Balance       decimal.Decimal `json:"balance"`
}

// StatsResponse agregados del tablero de facturación. Los montos se convierten
// a la moneda de visualización con tasas en vivo (nunca con tasas congeladas:
// los agregados entre documentos siempre usan tasas de visualización).
type StatsResponse struct {
	Currency         string          `json:"currency"`
	Total            int             `json:"total"`
	Draft            int             `json:"draft"`
	Sent             int             `json:"sent"`
	Paid             int             `json:"paid"`
	Overdue          int             `json:"overdue"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}
