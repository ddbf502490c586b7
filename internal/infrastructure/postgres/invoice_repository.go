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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// La cabecera es una fila con las líneas y las tasas congeladas en JSONB;
// los pagos van en su propia tabla append-only para que la escritura de un
// pago sea una inserción idempotente, nunca una reescritura del libro.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Save upsert de la cabecera. Los pagos NO se tocan aquí (ver SavePayment).
func (r *InvoiceRepo) Save(ctx context.Context, invoice *entity.Invoice) error {
	lines, err := json.Marshal(invoice.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	var lockedRates []byte
	if invoice.LockedRates != nil {
		lockedRates, err = json.Marshal(invoice.LockedRates)
		if err != nil {
			return fmt.Errorf("marshal locked rates: %w", err)
		}
	}

	query := `
		INSERT INTO invoices (id, invoice_number, quote_id, quote_number,
			client_id, client_name, client_email, client_address,
			status, currency, subtotal, total, paid_amount,
			line_items, locked_rates, notes,
			issue_date, due_date, paid_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_name = EXCLUDED.client_name,
			client_email = EXCLUDED.client_email,
			client_address = EXCLUDED.client_address,
			status = EXCLUDED.status,
			subtotal = EXCLUDED.subtotal,
			total = EXCLUDED.total,
			paid_amount = EXCLUDED.paid_amount,
			line_items = EXCLUDED.line_items,
			notes = EXCLUDED.notes,
			due_date = EXCLUDED.due_date,
			paid_date = EXCLUDED.paid_date,
			updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query,
		invoice.ID, invoice.InvoiceNumber, nullIfEmpty(invoice.QuoteID), nullIfEmpty(invoice.QuoteNumber),
		nullIfEmpty(invoice.ClientID), invoice.ClientName, nullIfEmpty(invoice.ClientEmail), nullIfEmpty(invoice.ClientAddress),
		invoice.Status, invoice.Currency, invoice.Subtotal, invoice.Total, invoice.PaidAmount,
		lines, lockedRates, nullIfEmpty(invoice.Notes),
		invoice.IssueDate, invoice.DueDate, invoice.PaidDate, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("upsert invoice: %w", err)
	}
	return nil
}

// SavePayment inserta un pago. Idempotente por ID: reintentar el mismo pago no
// duplica la fila.
func (r *InvoiceRepo) SavePayment(ctx context.Context, invoiceID string, payment entity.Payment) error {
	query := `
		INSERT INTO invoice_payments (id, invoice_id, amount, date, method, reference, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		payment.ID, invoiceID, payment.Amount, payment.Date, payment.Method,
		nullIfEmpty(payment.Reference), nullIfEmpty(payment.Notes), payment.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene una factura con su libro de pagos.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := selectInvoice + ` WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadPayments(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// List obtiene todas las facturas con sus pagos, más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context) ([]*entity.Invoice, error) {
	query := selectInvoice + ` ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if err := r.loadPayments(ctx, inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// Delete elimina la factura y sus pagos en cascada (FK ON DELETE CASCADE).
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const selectInvoice = `
	SELECT id, invoice_number, quote_id, quote_number,
		client_id, client_name, client_email, client_address,
		status, currency, subtotal, total, paid_amount,
		line_items, locked_rates, notes,
		issue_date, due_date, paid_date, created_at, updated_at
	FROM invoices`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                               entity.Invoice
		lines, lockedRates                []byte
		quoteID, quoteNumber, clientID    *string
		clientEmail, clientAddress, notes *string
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &quoteID, &quoteNumber,
		&clientID, &inv.ClientName, &clientEmail, &clientAddress,
		&inv.Status, &inv.Currency, &inv.Subtotal, &inv.Total, &inv.PaidAmount,
		&lines, &lockedRates, &notes,
		&inv.IssueDate, &inv.DueDate, &inv.PaidDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lines, &inv.LineItems); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}
	if len(lockedRates) > 0 {
		inv.LockedRates = &entity.RateSnapshot{}
		if err := json.Unmarshal(lockedRates, inv.LockedRates); err != nil {
			return nil, fmt.Errorf("unmarshal locked rates: %w", err)
		}
	}
	if quoteID != nil {
		inv.QuoteID = *quoteID
	}
	if quoteNumber != nil {
		inv.QuoteNumber = *quoteNumber
	}
	if clientID != nil {
		inv.ClientID = *clientID
	}
	if clientEmail != nil {
		inv.ClientEmail = *clientEmail
	}
	if clientAddress != nil {
		inv.ClientAddress = *clientAddress
	}
	if notes != nil {
		inv.Notes = *notes
	}
	return &inv, nil
}

func (r *InvoiceRepo) loadPayments(ctx context.Context, inv *entity.Invoice) error {
	query := `
		SELECT id, amount, date, method, reference, notes, recorded_at
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY recorded_at`
	rows, err := r.q.Query(ctx, query, inv.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                entity.Payment
			reference, notes *string
		)
		if err := rows.Scan(&p.ID, &p.Amount, &p.Date, &p.Method, &reference, &notes, &p.RecordedAt); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		if reference != nil {
			p.Reference = *reference
		}
		if notes != nil {
			p.Notes = *notes
		}
		inv.Payments = append(inv.Payments, p)
	}
	return rows.Err()
}
