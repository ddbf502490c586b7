// Package rates implementa el proveedor de tasas de cambio: caché en memoria
// con TTL, fuente en vivo y tabla estática de respaldo.
package rates

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/pkg/logger"
)

// Fetcher puerto hacia la fuente en vivo de tasas (HTTP).
type Fetcher interface {
	Fetch(ctx context.Context) (entity.RateTable, error)
}

// Provider entrega siempre una tabla de tasas usable:
//
//   - Si hay una tabla cacheada con menos de TTL de antigüedad, la devuelve.
//   - Si no, consulta la fuente en vivo, cachea el resultado con timestamp y lo devuelve.
//   - Si la fuente falla, devuelve la tabla de respaldo SIN cachearla, de modo
//     que la próxima llamada reintente la fuente en vivo.
//
// Los errores de red se tragan y se loguean; Rates nunca falla. La caché es
// compartida por todo el proceso: muchos cálculos leen, un refresh escribe, y
// la escritura es idempotente (re-escribir la tabla siempre es seguro).
type Provider struct {
	fetcher Fetcher
	ttl     time.Duration
	log     *logger.Logger
	now     func() time.Time

	mu        sync.RWMutex
	cached    entity.RateTable
	fetchedAt time.Time
}

// NewProvider construye el proveedor. Un TTL <= 0 usa 1 hora.
func NewProvider(fetcher Fetcher, ttl time.Duration, log *logger.Logger) *Provider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Provider{
		fetcher: fetcher,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// Rates devuelve la mejor tabla disponible ahora mismo. No bloquea a los
// cálculos esperando la red más allá del timeout del cliente subyacente.
func (p *Provider) Rates(ctx context.Context) entity.RateTable {
	if cached, ok := p.freshCache(); ok {
		return cached
	}

	table, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("fuente de tasas no disponible, usando tabla de respaldo")
		return entity.FallbackRates()
	}

	p.mu.Lock()
	p.cached = table
	p.fetchedAt = p.now()
	p.mu.Unlock()

	return table
}

// FetchedAt instante de la última actualización exitosa (cero si nunca hubo).
func (p *Provider) FetchedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fetchedAt
}

// Snapshot congela las tasas vigentes para fijarlas en un documento recién
// creado. A partir de ahí, las conversiones del total de ESE documento usan el
// snapshot, nunca una consulta en vivo.
func (p *Provider) Snapshot(ctx context.Context) entity.RateSnapshot {
	return entity.RateSnapshot{
		Rates:        p.Rates(ctx).Clone(),
		LockedAt:     p.now(),
		BaseCurrency: "USD",
	}
}

func (p *Provider) freshCache() (entity.RateTable, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached == nil {
		return nil, false
	}
	if p.now().Sub(p.fetchedAt) >= p.ttl {
		return nil, false
	}
	return p.cached, true
}
