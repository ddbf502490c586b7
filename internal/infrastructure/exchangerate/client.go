// Package exchangerate implementa el cliente HTTP hacia la fuente en vivo de
// tasas (por defecto exchangerate-api.com, pivote USD).
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

var _ rates.Fetcher = (*Client)(nil)

// Client cliente de la API de tasas.
type Client struct {
	url  string
	http *http.Client
}

// NewClient construye el cliente. Un timeout <= 0 usa 10 segundos.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// ratesPayload cuerpo esperado de la API: {"rates": {"USD": 1, "GBP": 0.79, ...}}.
type ratesPayload struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch descarga la tabla y la filtra al catálogo de monedas soportadas.
// Una tasa ausente o no positiva en la respuesta se sustituye por su valor de
// respaldo, de modo que la tabla devuelta siempre es completa y usable.
func (c *Client) Fetch(ctx context.Context) (entity.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("construir request de tasas: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("consultar tasas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("consultar tasas: HTTP %d", resp.StatusCode)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decodificar tasas: %w", err)
	}

	table := make(entity.RateTable, len(entity.Currencies))
	for code := range entity.Currencies {
		if f, ok := payload.Rates[code]; ok && f > 0 {
			table[code] = decimal.NewFromFloat(f)
			continue
		}
		if fb, ok := entity.FallbackRate(code); ok {
			table[code] = fb
		}
	}
	return table, nil
}
