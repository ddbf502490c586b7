package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/studio-ops/internal/application/billing"
	"github.com/tu-usuario/studio-ops/internal/application/dto"
	"github.com/tu-usuario/studio-ops/internal/application/quotes"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/store"
	apphttp "github.com/tu-usuario/studio-ops/internal/interfaces/http"
	"github.com/tu-usuario/studio-ops/pkg/logger"
)

// fallbackFetcher sirve la tabla estática como si fuera la fuente en vivo.
type fallbackFetcher struct{}

func (fallbackFetcher) Fetch(ctx context.Context) (entity.RateTable, error) {
	return entity.FallbackRates(), nil
}

// buildTestApp construye la aplicación completa en modo solo memoria.
func buildTestApp() *fiber.App {
	log := logger.Nop()
	provider := rates.NewProvider(fallbackFetcher{}, time.Hour, log)
	quoteUC := quotes.NewUseCase(store.New[*entity.Quote](), nil, log, "QT")
	invoiceUC := billing.NewInvoiceUseCase(
		store.New[*entity.Invoice](), nil, nil, provider, quoteUC, log, "INV",
	)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		QuoteUC:      quoteUC,
		InvoiceUC:    invoiceUC,
		RateProvider: provider,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createQuote(t *testing.T, app *fiber.App) entity.Quote {
	t.Helper()
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/quotes", dto.CreateQuoteRequest{
		Currency: "USD",
		Client:   dto.QuoteClientDTO{Company: "Acme Films"},
		Project:  dto.QuoteProjectDTO{Title: "Comercial TV"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var q entity.Quote
	require.NoError(t, json.Unmarshal(raw, &q))
	return q
}

func TestQuoteEndToEnd(t *testing.T) {
	app := buildTestApp()
	q := createQuote(t, app)
	assert.Equal(t, entity.QuoteStatusDraft, q.Status)
	assert.NotEmpty(t, q.QuoteNumber)

	// Cargar secciones
	resp, raw := doJSON(t, app, fiber.MethodPut, "/api/quotes/"+q.ID+"/sections", dto.UpdateSectionsRequest{
		Sections: []dto.SectionDTO{{
			ID:   "crew",
			Name: "Crew",
			Subsections: []dto.SubsectionDTO{{
				Name:  "Dirección",
				Items: []dto.LineItemDTO{{Description: "Director", Quantity: 1, Days: 2, RateCost: 17, RateCharge: 40}},
			}},
		}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	// Financials derivados
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/quotes/"+q.ID+"/financials", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var fin dto.FinancialsResponse
	require.NoError(t, json.Unmarshal(raw, &fin))
	assert.Equal(t, "USD", fin.Currency)
	assert.True(t, fin.TotalCharge.IntPart() == 80, "total charge %s", fin.TotalCharge)
	assert.Equal(t, 1, fin.ItemCount)
	assert.Equal(t, "$80.00", fin.GrandTotalText)

	// Transición a sent
	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/quotes/"+q.ID+"/status", dto.TransitionStatusRequest{
		Status: entity.QuoteStatusSent,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
}

func TestTransitionWithoutLossReasonIs422(t *testing.T) {
	app := buildTestApp()
	q := createQuote(t, app)

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/quotes/"+q.ID+"/status", dto.TransitionStatusRequest{
		Status: entity.QuoteStatusDead,
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "LOSS_REASON_REQUIRED", errResp.Code)
}

func TestInvoiceFromQuoteAndPayments(t *testing.T) {
	app := buildTestApp()
	q := createQuote(t, app)

	resp, raw := doJSON(t, app, fiber.MethodPut, "/api/quotes/"+q.ID+"/sections", dto.UpdateSectionsRequest{
		Sections: []dto.SectionDTO{{
			ID:   "post",
			Name: "Post",
			Subsections: []dto.SubsectionDTO{{
				Name:  "Edición",
				Items: []dto.LineItemDTO{{Description: "Editor", Quantity: 1, Days: 1, RateCharge: 100}},
			}},
		}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/invoices/from-quote", dto.CreateFromQuoteRequest{QuoteID: q.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var inv dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(raw, &inv))
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.True(t, inv.Total.IntPart() == 100, "total %s", inv.Total)
	require.NotNil(t, inv.LockedRates)

	// Pago parcial
	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/invoices/"+inv.ID+"/payments", dto.RecordPaymentRequest{Amount: 40})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &inv))
	assert.Equal(t, entity.InvoiceStatusPartial, inv.Status)
	assert.True(t, inv.Balance.IntPart() == 60, "balance %s", inv.Balance)

	// Pago con monto cero rechazado
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/invoices/"+inv.ID+"/payments", dto.RecordPaymentRequest{Amount: 0})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Stats
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/invoices/stats?currency=USD", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.Total)
}

func TestConvertEndpoint(t *testing.T) {
	app := buildTestApp()

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/rates/convert", dto.ConvertRequest{
		Amount: 100, From: "USD", To: "GBP",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var out dto.ConvertResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "GBP", out.To)
	assert.Equal(t, "£79.00", out.Formatted)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/rates/convert", dto.ConvertRequest{
		Amount: 100, From: "USD", To: "XXX",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRatesEndpoint(t *testing.T) {
	app := buildTestApp()

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/rates", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.RatesResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Contains(t, out.Rates, "USD")
	assert.Contains(t, out.Rates, "IDR")
}
