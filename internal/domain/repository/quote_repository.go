package repository

import (
	"context"

	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

// QuoteRepository define el puerto de persistencia remota para cotizaciones.
// El documento completo (secciones, fees, historial) se guarda como una fila;
// Delete elimina en cascada el historial de estados.
type QuoteRepository interface {
	Save(ctx context.Context, quote *entity.Quote) error // upsert por ID
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	List(ctx context.Context) ([]*entity.Quote, error)
	Delete(ctx context.Context, id string) error
}
