package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/studio-ops/internal/application/billing"
	"github.com/tu-usuario/studio-ops/internal/application/dto"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	uc     *billing.InvoiceUseCase
	pdfGen billing.InvoicePDFGenerator
	now    func() time.Time
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdfGen billing.InvoicePDFGenerator) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfGen: pdfGen, now: time.Now}
}

// Create crea una factura manual.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(h.response(inv))
}

// CreateFromQuote emite una factura desde una cotización con total y tasas congelados.
// POST /api/invoices/from-quote
func (h *InvoiceHandler) CreateFromQuote(c *fiber.Ctx) error {
	var in dto.CreateFromQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.uc.CreateFromQuote(c.Context(), in)
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cotización no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(h.response(inv))
}

// List devuelve todas las facturas con su estado de visualización.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	invoices := h.uc.List()
	resp := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, h.response(inv))
	}
	return c.JSON(resp)
}

// GetByID obtiene una factura con su libro de pagos.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(h.response(inv))
}

// UpdateStatus cambia el estado almacenado (sent, paid manual, cancelled).
// PATCH /api/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		if err == domain.ErrInvalidStatus {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATUS", Message: "estado desconocido o solo derivado"})
		}
		if err == domain.ErrTerminalStatus {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATUS", Message: "la factura ya está cerrada"})
		}
		if err == domain.ErrConflict {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición no permitida desde el estado actual"})
		}
		return invoiceError(c, err)
	}
	return c.JSON(h.response(inv))
}

// RecordPayment agrega un pago inmutable al libro.
// POST /api/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.uc.RecordPayment(c.Context(), c.Params("id"), in)
	if err != nil {
		if err == domain.ErrInvalidPayment {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PAYMENT", Message: "el monto del pago debe ser positivo"})
		}
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, usar YYYY-MM-DD"})
		}
		if err == domain.ErrConflict {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANCELLED", Message: "una factura cancelada no recibe pagos"})
		}
		return invoiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.response(inv))
}

// Stats agregados del tablero en la moneda de visualización (?currency=USD).
// GET /api/invoices/stats
func (h *InvoiceHandler) Stats(c *fiber.Ctx) error {
	display := c.Query("currency", "USD")
	if _, ok := entity.Currencies[display]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "moneda de visualización desconocida"})
	}
	return c.JSON(h.uc.Stats(c.Context(), display))
}

// DownloadPDF descarga la representación imprimible.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	data, filename, err := h.uc.DownloadInvoicePDF(c.Context(), h.pdfGen, c.Params("id"))
	if err != nil {
		return invoiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// Delete elimina la factura y sus pagos.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return invoiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *InvoiceHandler) response(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		Invoice:       inv,
		DisplayStatus: inv.DisplayStatus(h.now()),
		Balance:       inv.Balance(),
	}
}

func invoiceError(c *fiber.Ctx, err error) error {
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
