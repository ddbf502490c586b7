package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/studio-ops/internal/application/billing"
	"github.com/tu-usuario/studio-ops/internal/application/quotes"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	QuoteUC      *quotes.UseCase
	InvoiceUC    *billing.InvoiceUseCase
	RateProvider *rates.Provider
	InvoicePDF   billing.InvoicePDFGenerator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Tasas de cambio y conversión
	ratesHandler := NewRatesHandler(deps.RateProvider)
	api.Get("/rates", ratesHandler.List)
	api.Post("/rates/convert", ratesHandler.Convert)
	api.Get("/currencies", ratesHandler.Currencies)

	// Cotizaciones
	quotesGroup := api.Group("/quotes")
	quoteHandler := NewQuoteHandler(deps.QuoteUC, deps.RateProvider)
	quotesGroup.Post("/", quoteHandler.Create)
	quotesGroup.Get("/", quoteHandler.List)
	quotesGroup.Get("/:id", quoteHandler.GetByID)
	quotesGroup.Put("/:id/sections", quoteHandler.UpdateSections)
	quotesGroup.Put("/:id/fees", quoteHandler.SetFees)
	quotesGroup.Put("/:id/notes", quoteHandler.UpdateNotes)
	quotesGroup.Put("/:id/follow-up", quoteHandler.SetFollowUp)
	quotesGroup.Post("/:id/status", quoteHandler.TransitionStatus)
	quotesGroup.Get("/:id/financials", quoteHandler.Financials)
	quotesGroup.Delete("/:id", quoteHandler.Delete)

	// Facturas. /stats se registra antes de /:id para que no lo capture el parámetro.
	invoicesGroup := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoicesGroup.Get("/stats", invoiceHandler.Stats)
	invoicesGroup.Post("/", invoiceHandler.Create)
	invoicesGroup.Post("/from-quote", invoiceHandler.CreateFromQuote)
	invoicesGroup.Get("/", invoiceHandler.List)
	invoicesGroup.Get("/:id", invoiceHandler.GetByID)
	invoicesGroup.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoicesGroup.Post("/:id/payments", invoiceHandler.RecordPayment)
	invoicesGroup.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoicesGroup.Delete("/:id", invoiceHandler.Delete)
}
