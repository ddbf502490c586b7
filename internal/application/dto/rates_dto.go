package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatesResponse tabla de tasas vigente para GET /api/rates.
// FetchedAt es nil si nunca hubo una actualización exitosa (se está sirviendo respaldo).
type RatesResponse struct {
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt *time.Time                 `json:"fetched_at,omitempty"`
}

// ConvertRequest body para POST /api/rates/convert.
type ConvertRequest struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

// ConvertResponse resultado de una conversión puntual.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Formatted string          `json:"formatted"`
}
