package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo implementación de QuoteRepository (usable con pool o tx).
// La cotización se persiste como documento: una fila con las partes anidadas
// (client, project, sections, fees, status_history) en columnas JSONB. El
// historial viaja dentro de la fila, así Delete cascada sin tablas auxiliares.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

// Save upsert del documento completo. El almacén en memoria es autoritativo:
// la última escritura gana.
func (r *QuoteRepo) Save(ctx context.Context, quote *entity.Quote) error {
	client, err := json.Marshal(quote.Client)
	if err != nil {
		return fmt.Errorf("marshal client: %w", err)
	}
	project, err := json.Marshal(quote.Project)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	sections, err := json.Marshal(quote.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	fees, err := json.Marshal(quote.Fees)
	if err != nil {
		return fmt.Errorf("marshal fees: %w", err)
	}
	history, err := json.Marshal(quote.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}

	query := `
		INSERT INTO quotes (id, quote_number, currency, region, status, quote_date, validity_days,
			client, project, sections, fees, status_history,
			lost_reason, lost_reason_notes, internal_notes, next_follow_up, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			currency = EXCLUDED.currency,
			region = EXCLUDED.region,
			status = EXCLUDED.status,
			validity_days = EXCLUDED.validity_days,
			client = EXCLUDED.client,
			project = EXCLUDED.project,
			sections = EXCLUDED.sections,
			fees = EXCLUDED.fees,
			status_history = EXCLUDED.status_history,
			lost_reason = EXCLUDED.lost_reason,
			lost_reason_notes = EXCLUDED.lost_reason_notes,
			internal_notes = EXCLUDED.internal_notes,
			next_follow_up = EXCLUDED.next_follow_up,
			updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query,
		quote.ID, quote.QuoteNumber, quote.Currency, quote.Region, quote.Status,
		quote.QuoteDate, quote.ValidityDays,
		client, project, sections, fees, history,
		nullIfEmpty(string(quote.LostReason)), nullIfEmpty(quote.LostReasonNotes),
		nullIfEmpty(quote.InternalNotes), quote.NextFollowUp,
		quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("quote number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("upsert quote: %w", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	query := selectQuote + ` WHERE id = $1`
	q, err := scanQuote(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// List obtiene todas las cotizaciones, más recientes primero.
func (r *QuoteRepo) List(ctx context.Context) ([]*entity.Quote, error) {
	query := selectQuote + ` ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// Delete elimina la cotización. El historial vive en la misma fila.
func (r *QuoteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectQuote = `
	SELECT id, quote_number, currency, region, status, quote_date, validity_days,
		client, project, sections, fees, status_history,
		lost_reason, lost_reason_notes, internal_notes, next_follow_up, created_at, updated_at
	FROM quotes`

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var (
		q                                     entity.Quote
		client, project, sections, fees, hist []byte
		lostReason, lostNotes, internalNotes  *string
	)
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.Currency, &q.Region, &q.Status, &q.QuoteDate, &q.ValidityDays,
		&client, &project, &sections, &fees, &hist,
		&lostReason, &lostNotes, &internalNotes, &q.NextFollowUp, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(client, &q.Client); err != nil {
		return nil, fmt.Errorf("unmarshal client: %w", err)
	}
	if err := json.Unmarshal(project, &q.Project); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	if err := json.Unmarshal(sections, &q.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	if err := json.Unmarshal(fees, &q.Fees); err != nil {
		return nil, fmt.Errorf("unmarshal fees: %w", err)
	}
	if err := json.Unmarshal(hist, &q.StatusHistory); err != nil {
		return nil, fmt.Errorf("unmarshal status history: %w", err)
	}
	if lostReason != nil {
		q.LostReason = entity.LossReason(*lostReason)
	}
	if lostNotes != nil {
		q.LostReasonNotes = *lostNotes
	}
	if internalNotes != nil {
		q.InternalNotes = *internalNotes
	}
	return &q, nil
}
