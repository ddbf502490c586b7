// Package billing implementa los casos de uso de facturación: emisión desde
// cotización ganada, libro de pagos append-only y agregados del tablero.
package billing

import (
	"context"

	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn dentro de una transacción de base de datos:
// la factura y su pago deben persistirse de forma atómica.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error
}

// InvoicePDFGenerator renderiza una factura como documento PDF.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
}
