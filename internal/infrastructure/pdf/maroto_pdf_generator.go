// Package pdf implementa la representación imprimible de una factura.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Estudio  │  N° Factura + Fechas de emisión/venc.   │
//	│  ───────────────────────────────────────────────────────── │
//	│  CLIENTE: Nombre + Email + Dirección                        │
//	│  ───────────────────────────────────────────────────────── │
//	│  TABLA: Cant | Días | Descripción | Tarifa | Total          │
//	│  ───────────────────────────────────────────────────────── │
//	│  TOTALES: Subtotal / TOTAL / Pagado / Saldo                 │
//	│  NOTAS                                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/tu-usuario/studio-ops/internal/application/billing"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	studioName string
}

// NewMarotoPDFGenerator construye el generador con el nombre del estudio.
func NewMarotoPDFGenerator(studioName string) *MarotoPDFGenerator {
	if studioName == "" {
		studioName = "studio-ops"
	}
	return &MarotoPDFGenerator{studioName: studioName}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, invoice *entity.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+invoice.InvoiceNumber, true).
		WithAuthor(g.studioName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(invoice) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	if invoice.Notes != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+invoice.Notes, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del estudio (izq) y número + fechas (der).
func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice) core.Row {
	right := col.New(5).Add(
		text.New("FACTURA", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right,
			Color: colorPrimary, Top: 1,
		}),
		text.New(invoice.InvoiceNumber, props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
		}),
		text.New(
			fmt.Sprintf("Emitida: %s   Vence: %s",
				invoice.IssueDate.Format("02/01/2006"),
				invoice.DueDate.Format("02/01/2006")),
			props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray},
		),
	)

	left := col.New(7).Add(
		text.New(g.studioName, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
		}),
	)
	if invoice.QuoteNumber != "" {
		left.Add(text.New("Cotización: "+invoice.QuoteNumber, props.Text{
			Size: 9, Top: 9, Color: colorGray,
		}))
	}

	return row.New(18).Add(left, right)
}

// clientRow: datos del cliente facturado.
func clientRow(invoice *entity.Invoice) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("FACTURAR A", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.ClientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Dirección: %s",
				nonEmpty(invoice.ClientEmail, "—"),
				nonEmpty(invoice.ClientAddress, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Días", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Tarifa", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// tableLineRows: una fila por línea de la factura.
func tableLineRows(invoice *entity.Invoice) []core.Row {
	opts := finance.DefaultFormatOptions()
	result := make([]core.Row, 0, len(invoice.LineItems))
	for _, l := range invoice.LineItems {
		desc := l.Description
		if l.Section != "" {
			desc = l.Section + " / " + desc
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				l.Days.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				desc,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				finance.Format(l.Rate, invoice.Currency, opts),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				finance.Format(l.Total, invoice.Currency, opts),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales y saldo alineado a la derecha.
func totalsRow(invoice *entity.Invoice) core.Row {
	opts := finance.DefaultFormatOptions()
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	labels := col.New(3).Add(
		label("Subtotal:"),
		grandLabel("TOTAL:"),
	)
	values := col.New(3).Add(
		value(finance.Format(invoice.Subtotal, invoice.Currency, opts)),
		grandValue(finance.Format(invoice.Total, invoice.Currency, opts)),
	)
	height := 20.0
	if invoice.PaidAmount.IsPositive() {
		balance := invoice.Balance()
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		labels.Add(label("Pagado:"), label("Saldo:"))
		values.Add(
			value(finance.Format(invoice.PaidAmount, invoice.Currency, opts)),
			value(finance.Format(balance, invoice.Currency, opts)),
		)
		height = 30.0
	}

	return row.New(height).Add(col.New(3), labels, values, col.New(3))
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
