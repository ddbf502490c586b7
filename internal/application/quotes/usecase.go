// Package quotes implementa los casos de uso del ciclo de vida de cotizaciones:
// creación con numeración, edición de secciones y fees, totales derivados y la
// máquina de estados con captura obligatoria de motivo de pérdida.
package quotes

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/studio-ops/internal/application/dto"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
	"github.com/tu-usuario/studio-ops/internal/domain/repository"
	"github.com/tu-usuario/studio-ops/internal/store"
	"github.com/tu-usuario/studio-ops/pkg/logger"
)

const syncTimeout = 5 * time.Second

// UseCase opera sobre el almacén en memoria (autoritativo para la sesión) y
// sincroniza con el repositorio remoto de forma asíncrona y best-effort: un
// fallo de sincronización se loguea y no bloquea al llamador; la próxima
// mutación vuelve a guardar el documento completo.
type UseCase struct {
	store  *store.Store[*entity.Quote]
	repo   repository.QuoteRepository // nil => sin sincronización remota
	log    *logger.Logger
	prefix string
	now    func() time.Time

	numMu sync.Mutex // cubre la acuñación del número Y su publicación en el store
}

// NewUseCase construye el caso de uso. repo puede ser nil (modo solo memoria).
func NewUseCase(st *store.Store[*entity.Quote], repo repository.QuoteRepository, log *logger.Logger, prefix string) *UseCase {
	if prefix == "" {
		prefix = "QT"
	}
	return &UseCase{
		store:  st,
		repo:   repo,
		log:    log,
		prefix: prefix,
		now:    time.Now,
	}
}

// Create crea una cotización en draft con número propio y moneda fija.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateQuoteRequest) (*entity.Quote, error) {
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	if _, ok := entity.Currencies[currency]; !ok {
		return nil, domain.ErrInvalidInput
	}

	validity := in.ValidityDays
	if validity <= 0 {
		validity = 30
	}

	now := uc.now()
	q := &entity.Quote{
		ID:           uuid.New().String(),
		Currency:     currency,
		Region:       in.Region,
		Status:       entity.QuoteStatusDraft,
		QuoteDate:    now,
		ValidityDays: validity,
		Client: entity.QuoteClient{
			Company:   in.Client.Company,
			ContactID: in.Client.ContactID,
			Contact:   in.Client.Contact,
			Role:      in.Client.Role,
			Email:     in.Client.Email,
			Phone:     in.Client.Phone,
			Notes:     in.Client.Notes,
		},
		Project: entity.QuoteProject{
			Title:       in.Project.Title,
			Type:        in.Project.Type,
			Venue:       in.Project.Venue,
			StartDate:   in.Project.StartDate,
			EndDate:     in.Project.EndDate,
			Description: in.Project.Description,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Número y publicación bajo el mismo lock: dos Create concurrentes jamás
	// acuñan el mismo número.
	uc.numMu.Lock()
	q.QuoteNumber = uc.nextNumber()
	uc.store.Put(q.ID, q)
	uc.numMu.Unlock()

	uc.persist(q)
	return q, nil
}

// Get devuelve una cotización por ID.
func (uc *UseCase) Get(id string) (*entity.Quote, error) {
	q, ok := uc.store.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

// List devuelve todas las cotizaciones de la sesión.
func (uc *UseCase) List() []*entity.Quote {
	return uc.store.List()
}

// UpdateSections reemplaza las secciones con los ítems ya normalizados.
func (uc *UseCase) UpdateSections(ctx context.Context, id string, sections []entity.Section) (*entity.Quote, error) {
	q, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	q.Sections = sections
	q.UpdatedAt = uc.now()
	uc.store.Put(q.ID, q)
	uc.persist(q)
	return q, nil
}

// SetFees reemplaza la configuración de fees preservando el orden recibido.
func (uc *UseCase) SetFees(ctx context.Context, id string, fees entity.FeeConfig) (*entity.Quote, error) {
	q, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	q.Fees = fees
	q.UpdatedAt = uc.now()
	uc.store.Put(q.ID, q)
	uc.persist(q)
	return q, nil
}

// SetInternalNotes actualiza las notas internas.
func (uc *UseCase) SetInternalNotes(ctx context.Context, id, notes string) (*entity.Quote, error) {
	q, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	q.InternalNotes = notes
	q.UpdatedAt = uc.now()
	uc.store.Put(q.ID, q)
	uc.persist(q)
	return q, nil
}

// SetNextFollowUp fija la fecha del próximo seguimiento.
func (uc *UseCase) SetNextFollowUp(ctx context.Context, id string, at *time.Time) (*entity.Quote, error) {
	q, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	q.NextFollowUp = at
	q.UpdatedAt = uc.now()
	uc.store.Put(q.ID, q)
	uc.persist(q)
	return q, nil
}

// Financials recalcula los totales desde las secciones en CADA llamada; nunca
// se cachean, porque los ítems mutan con frecuencia y no deben presentarse
// totales obsoletos.
func (uc *UseCase) Financials(id string) (*entity.Quote, finance.Totals, error) {
	q, err := uc.Get(id)
	if err != nil {
		return nil, finance.Totals{}, err
	}
	return q, finance.Aggregate(q.Sections, q.Fees), nil
}

// TransitionStatus aplica la transición con las reglas del ciclo de vida
// (ver entity.Quote.Transition). Una transición rechazada es un no-op: el
// llamador debe volver a pedir el motivo de pérdida al usuario.
func (uc *UseCase) TransitionStatus(ctx context.Context, id string, in dto.TransitionStatusRequest) (*entity.Quote, error) {
	q, err := uc.Get(id)
	if err != nil {
		return nil, err
	}

	err = q.Transition(in.Status, uc.now(), in.Note, entity.LossReason(in.LossReason), in.LossNotes)
	if err != nil {
		return nil, err
	}

	uc.store.Put(q.ID, q)
	uc.persist(q)
	return q, nil
}

// Delete elimina la cotización por acción explícita del usuario; la cascada
// incluye su historial de estados (vive dentro del mismo documento).
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Get(id); err != nil {
		return err
	}
	uc.store.Delete(id)

	if uc.repo != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			defer cancel()
			if err := uc.repo.Delete(ctx, id); err != nil {
				uc.log.Warn().Err(err).Str("quote_id", id).Msg("eliminación remota de cotización falló")
			}
		}()
	}
	return nil
}

// nextNumber asigna <prefijo>-<año>-<secuencia>. La secuencia continúa desde el
// máximo existente del año; los números nunca se reutilizan. El llamador debe
// sostener numMu hasta después de publicar el documento en el store.
func (uc *UseCase) nextNumber() string {
	prefix := fmt.Sprintf("%s-%d-", uc.prefix, uc.now().Year())
	max := 0
	for _, q := range uc.store.List() {
		if !strings.HasPrefix(q.QuoteNumber, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(q.QuoteNumber, prefix)); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, max+1)
}

// persist sincroniza el documento con el repositorio remoto sin bloquear al
// llamador. El estado en memoria sigue siendo autoritativo ante un fallo.
func (uc *UseCase) persist(q *entity.Quote) {
	if uc.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := uc.repo.Save(ctx, q); err != nil {
			uc.log.Warn().Err(err).Str("quote_id", q.ID).Msg("sincronización remota de cotización falló")
		}
	}()
}
