package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency describe una moneda soportada por la aplicación.
// MinorUnits es la cantidad de decimales convencional de la moneda (IDR no usa decimales).
type Currency struct {
	Code       string
	Symbol     string
	Name       string
	MinorUnits int32
}

// Currencies catálogo de monedas soportadas. Las conversiones se enrutan vía pivote USD.
var Currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", MinorUnits: 2},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", MinorUnits: 2},
	"MYR": {Code: "MYR", Symbol: "RM", Name: "Malaysian Ringgit", MinorUnits: 2},
	"IDR": {Code: "IDR", Symbol: "Rp", Name: "Indonesian Rupiah", MinorUnits: 0},
	"KWD": {Code: "KWD", Symbol: "KD", Name: "Kuwaiti Dinar", MinorUnits: 2},
	"AED": {Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", MinorUnits: 2},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", MinorUnits: 2},
	"THB": {Code: "THB", Symbol: "฿", Name: "Thai Baht", MinorUnits: 2},
	"QAR": {Code: "QAR", Symbol: "QR", Name: "Qatari Riyal", MinorUnits: 2},
	"SAR": {Code: "SAR", Symbol: "SR", Name: "Saudi Riyal", MinorUnits: 2},
}

// RateTable mapea código de moneda -> tasa relativa al pivote USD (USD = 1.0).
// Invariante: toda tasa usable es > 0; una tasa ausente o no positiva se
// sustituye por la tabla de respaldo y en último caso por la identidad (1.0).
type RateTable map[string]decimal.Decimal

// Clone devuelve una copia independiente de la tabla.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for code, rate := range t {
		out[code] = rate
	}
	return out
}

// fallbackRates tabla estática de respaldo, usada cuando la fuente en vivo no responde
// o entrega datos corruptos.
var fallbackRates = map[string]string{
	"USD": "1",
	"GBP": "0.79",
	"MYR": "4.47",
	"IDR": "15850",
	"KWD": "0.31",
	"AED": "3.67",
	"SGD": "1.34",
	"THB": "34.50",
	"QAR": "3.64",
	"SAR": "3.75",
}

// FallbackRates devuelve una copia fresca de la tabla de respaldo.
func FallbackRates() RateTable {
	out := make(RateTable, len(fallbackRates))
	for code, s := range fallbackRates {
		out[code] = decimal.RequireFromString(s)
	}
	return out
}

// FallbackRate devuelve la tasa de respaldo de una moneda y si existe en la tabla.
func FallbackRate(code string) (decimal.Decimal, bool) {
	s, ok := fallbackRates[code]
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.RequireFromString(s), true
}

// RateSnapshot congela una tabla de tasas en un instante dado.
// Una vez creado un documento (cotización, factura), las conversiones de SU
// total usan el snapshot capturado en ese momento, nunca una consulta en vivo;
// los tableros agregados sí usan tasas de visualización.
type RateSnapshot struct {
	Rates        RateTable `json:"rates"`
	LockedAt     time.Time `json:"locked_at"`
	BaseCurrency string    `json:"base_currency"`
}
