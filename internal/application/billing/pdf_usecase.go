package billing

import (
	"context"
	"fmt"
)

// DownloadInvoicePDF renderiza la factura y devuelve el binario junto con el
// nombre de archivo sugerido.
func (uc *InvoiceUseCase) DownloadInvoicePDF(ctx context.Context, gen InvoicePDFGenerator, id string) ([]byte, string, error) {
	inv, err := uc.Get(id)
	if err != nil {
		return nil, "", err
	}

	data, err := gen.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("generando PDF de factura %s: %w", inv.InvoiceNumber, err)
	}
	return data, inv.InvoiceNumber + ".pdf", nil
}
