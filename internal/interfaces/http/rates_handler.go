package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/studio-ops/internal/application/dto"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

// RatesHandler maneja las peticiones de tasas de cambio y conversión.
type RatesHandler struct {
	provider *rates.Provider
}

// NewRatesHandler construye el handler.
func NewRatesHandler(provider *rates.Provider) *RatesHandler {
	return &RatesHandler{provider: provider}
}

// List devuelve la tabla de tasas vigente (pivote USD).
// GET /api/rates
func (h *RatesHandler) List(c *fiber.Ctx) error {
	table := h.provider.Rates(c.Context())
	resp := dto.RatesResponse{Rates: table}
	if at := h.provider.FetchedAt(); !at.IsZero() {
		resp.FetchedAt = &at
	}
	return c.JSON(resp)
}

// Convert convierte un monto entre monedas del catálogo con tasas en vivo.
// POST /api/rates/convert
func (h *RatesHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if _, ok := entity.Currencies[in.From]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "moneda de origen desconocida"})
	}
	if _, ok := entity.Currencies[in.To]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "moneda de destino desconocida"})
	}

	table := h.provider.Rates(c.Context())
	converted := finance.ConvertFloat(in.Amount, in.From, in.To, table)
	return c.JSON(dto.ConvertResponse{
		Amount:    finance.DecimalFromFloat(in.Amount),
		From:      in.From,
		To:        in.To,
		Converted: converted,
		Formatted: finance.Format(converted, in.To, finance.DefaultFormatOptions()),
	})
}

// Currencies devuelve el catálogo de monedas soportadas.
// GET /api/currencies
func (h *RatesHandler) Currencies(c *fiber.Ctx) error {
	return c.JSON(entity.Currencies)
}
