package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/studio-ops/internal/application/dto"
	"github.com/tu-usuario/studio-ops/internal/application/quotes"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

// QuoteHandler maneja las peticiones HTTP de cotizaciones.
type QuoteHandler struct {
	uc       *quotes.UseCase
	provider *rates.Provider
}

// NewQuoteHandler construye el handler.
func NewQuoteHandler(uc *quotes.UseCase, provider *rates.Provider) *QuoteHandler {
	return &QuoteHandler{uc: uc, provider: provider}
}

// Create crea una cotización en draft.
// POST /api/quotes
func (h *QuoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "moneda desconocida"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// List devuelve todas las cotizaciones.
// GET /api/quotes
func (h *QuoteHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.uc.List())
}

// GetByID obtiene una cotización.
// GET /api/quotes/:id
func (h *QuoteHandler) GetByID(c *fiber.Ctx) error {
	q, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cotización no encontrada"})
	}
	return c.JSON(q)
}

// UpdateSections reemplaza las secciones e ítems.
// PUT /api/quotes/:id/sections
func (h *QuoteHandler) UpdateSections(c *fiber.Ctx) error {
	var in dto.UpdateSectionsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.uc.UpdateSections(c.Context(), c.Params("id"), in.ToEntity())
	if err != nil {
		return quoteError(c, err)
	}
	return c.JSON(q)
}

// SetFees reemplaza la configuración de fees (el orden importa).
// PUT /api/quotes/:id/fees
func (h *QuoteHandler) SetFees(c *fiber.Ctx) error {
	var in dto.SetFeesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.uc.SetFees(c.Context(), c.Params("id"), in.ToEntity())
	if err != nil {
		return quoteError(c, err)
	}
	return c.JSON(q)
}

// UpdateNotes actualiza las notas internas.
// PUT /api/quotes/:id/notes
func (h *QuoteHandler) UpdateNotes(c *fiber.Ctx) error {
	var in dto.UpdateNotesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.uc.SetInternalNotes(c.Context(), c.Params("id"), in.InternalNotes)
	if err != nil {
		return quoteError(c, err)
	}
	return c.JSON(q)
}

// SetFollowUp fija (o limpia) la fecha del próximo seguimiento.
// PUT /api/quotes/:id/follow-up
func (h *QuoteHandler) SetFollowUp(c *fiber.Ctx) error {
	var in dto.SetFollowUpRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	var at *time.Time
	if in.NextFollowUp != "" {
		parsed, err := time.Parse("2006-01-02", in.NextFollowUp)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, usar YYYY-MM-DD"})
		}
		at = &parsed
	}
	q, err := h.uc.SetNextFollowUp(c.Context(), c.Params("id"), at)
	if err != nil {
		return quoteError(c, err)
	}
	return c.JSON(q)
}

// TransitionStatus aplica una transición del ciclo de vida.
// POST /api/quotes/:id/status
func (h *QuoteHandler) TransitionStatus(c *fiber.Ctx) error {
	var in dto.TransitionStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	q, err := h.uc.TransitionStatus(c.Context(), c.Params("id"), in)
	if err != nil {
		if err == domain.ErrInvalidStatus {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_STATUS", Message: "estado desconocido"})
		}
		if err == domain.ErrTerminalStatus {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATUS", Message: "un estado terminal no admite transiciones"})
		}
		if err == domain.ErrLossReasonRequired {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "LOSS_REASON_REQUIRED", Message: "un cierre negativo exige motivo de pérdida"})
		}
		return quoteError(c, err)
	}
	return c.JSON(q)
}

// Financials devuelve los totales derivados, opcionalmente convertidos a una
// moneda de visualización con tasas en vivo (?currency=GBP). La conversión es
// solo de presentación: la moneda del documento no cambia.
// GET /api/quotes/:id/financials
func (h *QuoteHandler) Financials(c *fiber.Ctx) error {
	q, totals, err := h.uc.Financials(c.Params("id"))
	if err != nil {
		return quoteError(c, err)
	}

	currency := q.Currency
	resp := dto.FinancialsResponse{
		Currency:    currency,
		TotalCharge: totals.TotalCharge,
		TotalCost:   totals.TotalCost,
		Profit:      totals.Profit,
		Margin:      totals.Margin,
		GrandTotal:  totals.GrandTotal,
		ItemCount:   finance.CountItems(q.Sections),
	}
	for _, fee := range totals.FeeBreakdown {
		resp.FeeBreakdown = append(resp.FeeBreakdown, dto.FeeLineResponse{
			FeeID: fee.FeeID, Label: fee.Label, Amount: fee.Amount,
		})
	}

	display := c.Query("currency")
	if display != "" && display != currency {
		if _, ok := entity.Currencies[display]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "moneda de visualización desconocida"})
		}
		table := h.provider.Rates(c.Context())
		resp.DisplayCurrency = display
		resp.TotalCharge = finance.Convert(resp.TotalCharge, currency, display, table)
		resp.TotalCost = finance.Convert(resp.TotalCost, currency, display, table)
		resp.Profit = finance.Convert(resp.Profit, currency, display, table)
		resp.GrandTotal = finance.Convert(resp.GrandTotal, currency, display, table)
		for i := range resp.FeeBreakdown {
			resp.FeeBreakdown[i].Amount = finance.Convert(resp.FeeBreakdown[i].Amount, currency, display, table)
		}
		resp.GrandTotalText = finance.Format(resp.GrandTotal, display, finance.DefaultFormatOptions())
	} else {
		resp.GrandTotalText = finance.Format(resp.GrandTotal, currency, finance.DefaultFormatOptions())
	}

	return c.JSON(resp)
}

// Delete elimina la cotización (acción explícita, cascada del historial).
// DELETE /api/quotes/:id
func (h *QuoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return quoteError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func quoteError(c *fiber.Ctx, err error) error {
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cotización no encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
