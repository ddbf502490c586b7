package repository

import (
	"context"

	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia remota para facturas.
// Los pagos viven en su propia tabla (append-only); SavePayment es idempotente
// por ID de pago. Delete elimina la factura y sus pagos en cascada.
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *entity.Invoice) error // upsert de la cabecera
	SavePayment(ctx context.Context, invoiceID string, payment entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context) ([]*entity.Invoice, error)
	Delete(ctx context.Context, id string) error
}
