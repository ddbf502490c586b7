package finance

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

// printer con agrupación de miles estilo en-US (1,234.56), igual para todas las monedas.
var printer = message.NewPrinter(language.AmericanEnglish)

// FormatOptions opciones de formato de montos.
type FormatOptions struct {
	ShowSymbol bool
	Decimals   int32
}

// DefaultFormatOptions símbolo visible y 2 decimales.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{ShowSymbol: true, Decimals: 2}
}

// Format presenta un monto para visualización.
// Las monedas sin unidad menor (IDR) usan 0 decimales sin importar las opciones;
// un código desconocido cae a un string numérico sin símbolo.
func Format(amount decimal.Decimal, code string, opts FormatOptions) string {
	cur, known := entity.Currencies[code]

	decimals := opts.Decimals
	if known && cur.MinorUnits == 0 {
		decimals = 0
	}

	if !known {
		return amount.StringFixed(decimals)
	}

	formatted := printer.Sprintf("%v", number.Decimal(
		amount.Round(decimals).InexactFloat64(),
		number.MinFractionDigits(int(decimals)),
		number.MaxFractionDigits(int(decimals)),
	))

	if opts.ShowSymbol {
		return cur.Symbol + formatted
	}
	return formatted
}

// Symbol devuelve el símbolo de la moneda, o el propio código si es desconocida.
func Symbol(code string) string {
	if cur, ok := entity.Currencies[code]; ok {
		return cur.Symbol
	}
	return code
}
