package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/application/dto"
	"github.com/tu-usuario/studio-ops/internal/application/rates"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
	"github.com/tu-usuario/studio-ops/internal/domain/repository"
	"github.com/tu-usuario/studio-ops/internal/store"
	"github.com/tu-usuario/studio-ops/pkg/logger"
)

const (
	syncTimeout    = 5 * time.Second
	defaultDueDays = 30
	dateLayout     = "2006-01-02"
)

// QuoteGetter acceso de solo lectura a cotizaciones, para emitir facturas a
// partir de una cotización sin acoplar los dos casos de uso.
type QuoteGetter interface {
	Get(id string) (*entity.Quote, error)
}

// InvoiceUseCase opera el ciclo de vida de facturas y su libro de pagos. El
// almacén en memoria es autoritativo; la persistencia remota es asíncrona y
// best-effort, salvo el registro de pagos, que cuando hay base de datos usa el
// TxRunner para escribir cabecera y pago en una sola transacción.
type InvoiceUseCase struct {
	store  *store.Store[*entity.Invoice]
	repo   repository.InvoiceRepository // nil => sin sincronización remota
	tx     InvoiceTxRunner              // nil => sin transacciones
	rates  *rates.Provider
	quotes QuoteGetter
	log    *logger.Logger
	prefix string
	now    func() time.Time

	numMu sync.Mutex
}

// NewInvoiceUseCase construye el caso de uso. repo y tx pueden ser nil.
func NewInvoiceUseCase(
	st *store.Store[*entity.Invoice],
	repo repository.InvoiceRepository,
	tx InvoiceTxRunner,
	provider *rates.Provider,
	quotes QuoteGetter,
	log *logger.Logger,
	prefix string,
) *InvoiceUseCase {
	if prefix == "" {
		prefix = "INV"
	}
	return &InvoiceUseCase{
		store:  st,
		repo:   repo,
		tx:     tx,
		rates:  provider,
		quotes: quotes,
		log:    log,
		prefix: prefix,
		now:    time.Now,
	}
}

// CreateFromQuote emite una factura a partir de una cotización: copia los
// ítems con descripción y cargo, y congela el total y las tasas vigentes.
// Mutar la cotización después NO mueve el total de la factura.
func (uc *InvoiceUseCase) CreateFromQuote(ctx context.Context, in dto.CreateFromQuoteRequest) (*entity.Invoice, error) {
	q, err := uc.quotes.Get(in.QuoteID)
	if err != nil {
		return nil, err
	}

	totals := finance.Aggregate(q.Sections, q.Fees)

	var lines []entity.InvoiceLine
	for _, section := range q.Sections {
		for _, sub := range section.Subsections {
			for _, item := range sub.Items {
				charge, _ := finance.LineTotals(item)
				// Los ítems vacíos o sin cargo no aparecen en el documento emitido.
				if item.Description == "" || !charge.IsPositive() {
					continue
				}
				lines = append(lines, entity.InvoiceLine{
					Description: item.Description,
					Quantity:    item.Quantity,
					Days:        item.Days,
					Rate:        item.RateCharge,
					Total:       charge,
					Section:     section.Name,
					Subsection:  sub.Name,
				})
			}
		}
	}

	now := uc.now()
	snapshot := uc.rates.Snapshot(ctx)
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		QuoteID:       q.ID,
		QuoteNumber:   q.QuoteNumber,
		ClientID:      in.Client.ID,
		ClientName:    firstNonEmpty(in.Client.Name, q.Client.Company),
		ClientEmail:   firstNonEmpty(in.Client.Email, q.Client.Email),
		ClientAddress: in.Client.Address,
		Status:        entity.InvoiceStatusDraft,
		Currency:      q.Currency,
		Subtotal:      totals.TotalCharge,
		Total:         totals.GrandTotal,
		PaidAmount:    decimal.Zero,
		LineItems:     lines,
		LockedRates:   &snapshot,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, defaultDueDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	uc.putNumbered(inv)
	uc.persist(inv)
	return inv, nil
}

// Create emite una factura manual, sin cotización de origen.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	if _, ok := entity.Currencies[currency]; !ok {
		return nil, domain.ErrInvalidInput
	}
	if in.Client.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	subtotal := decimal.Zero
	lines := make([]entity.InvoiceLine, 0, len(in.LineItems))
	for _, l := range in.LineItems {
		item := entity.NormalizeLineItem(entity.LineItem{
			Description: l.Description,
			Quantity:    finance.DecimalFromFloat(l.Quantity),
			Days:        finance.DecimalFromFloat(l.Days),
			RateCharge:  finance.DecimalFromFloat(l.Rate),
		})
		charge, _ := finance.LineTotals(item)
		lines = append(lines, entity.InvoiceLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			Days:        item.Days,
			Rate:        item.RateCharge,
			Total:       charge,
			Section:     l.Section,
			Subsection:  l.Subsection,
		})
		subtotal = subtotal.Add(charge)
	}

	now := uc.now()
	due := now.AddDate(0, 0, defaultDueDays)
	if in.DueDate != "" {
		parsed, err := time.Parse(dateLayout, in.DueDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		due = parsed
	}

	snapshot := uc.rates.Snapshot(ctx)
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		ClientID:      in.Client.ID,
		ClientName:    in.Client.Name,
		ClientEmail:   in.Client.Email,
		ClientAddress: in.Client.Address,
		Status:        entity.InvoiceStatusDraft,
		Currency:      currency,
		Subtotal:      subtotal,
		Total:         subtotal,
		PaidAmount:    decimal.Zero,
		LineItems:     lines,
		LockedRates:   &snapshot,
		Notes:         in.Notes,
		IssueDate:     now,
		DueDate:       due,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	uc.putNumbered(inv)
	uc.persist(inv)
	return inv, nil
}

// Get devuelve una factura por ID.
func (uc *InvoiceUseCase) Get(id string) (*entity.Invoice, error) {
	inv, ok := uc.store.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// List devuelve todas las facturas de la sesión.
func (uc *InvoiceUseCase) List() []*entity.Invoice {
	return uc.store.List()
}

// UpdateStatus cambia el estado almacenado por acción manual del usuario:
//
//	draft -> sent
//	sent|partial -> paid  (marca manual de pago total; fija PaidDate)
//	draft|sent -> cancelled
//
// paid y cancelled no admiten salidas. partial y overdue son derivados y no
// pueden fijarse a mano.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, id, newStatus string) (*entity.Invoice, error) {
	inv, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	if inv.IsClosed() {
		return nil, domain.ErrTerminalStatus
	}

	now := uc.now()
	switch newStatus {
	case entity.InvoiceStatusSent:
		if inv.Status != entity.InvoiceStatusDraft {
			return nil, domain.ErrConflict
		}
		inv.Status = entity.InvoiceStatusSent
	case entity.InvoiceStatusPaid:
		if inv.Status != entity.InvoiceStatusSent && inv.Status != entity.InvoiceStatusPartial {
			return nil, domain.ErrConflict
		}
		inv.Status = entity.InvoiceStatusPaid
		d := now
		inv.PaidDate = &d
	case entity.InvoiceStatusCancelled:
		if inv.Status != entity.InvoiceStatusDraft && inv.Status != entity.InvoiceStatusSent {
			return nil, domain.ErrConflict
		}
		inv.Status = entity.InvoiceStatusCancelled
	default:
		return nil, domain.ErrInvalidStatus
	}

	inv.UpdatedAt = now
	uc.store.Put(inv.ID, inv)
	uc.persist(inv)
	return inv, nil
}

// RecordPayment agrega un pago inmutable al libro. Con base de datos
// disponible, cabecera y pago se escriben en una sola transacción.
func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, id string, in dto.RecordPaymentRequest) (*entity.Invoice, error) {
	inv, err := uc.Get(id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	date := now
	if in.Date != "" {
		parsed, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		date = parsed
	}
	method := in.Method
	if method == "" {
		method = entity.PaymentMethodBankTransfer
	}

	p := entity.Payment{
		ID:         uuid.New().String(),
		Amount:     finance.DecimalFromFloat(in.Amount),
		Date:       date,
		Method:     method,
		Reference:  in.Reference,
		Notes:      in.Notes,
		RecordedAt: now,
	}

	if err := inv.ApplyPayment(p); err != nil {
		return nil, err
	}

	uc.store.Put(inv.ID, inv)
	uc.persistPayment(inv, p)
	return inv, nil
}

// Stats agrega el tablero de facturación en la moneda pedida. Los montos se
// convierten con tasas EN VIVO: los agregados entre documentos nunca usan las
// tasas congeladas de cada factura.
func (uc *InvoiceUseCase) Stats(ctx context.Context, displayCurrency string) dto.StatsResponse {
	if displayCurrency == "" {
		displayCurrency = "USD"
	}
	liveRates := uc.rates.Rates(ctx)
	now := uc.now()

	stats := dto.StatsResponse{
		Currency:         displayCurrency,
		TotalRevenue:     decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, inv := range uc.store.List() {
		stats.Total++
		switch inv.Status {
		case entity.InvoiceStatusDraft:
			stats.Draft++
		case entity.InvoiceStatusSent:
			stats.Sent++
			stats.TotalOutstanding = stats.TotalOutstanding.Add(
				finance.Convert(inv.Total, inv.Currency, displayCurrency, liveRates))
		case entity.InvoiceStatusPaid:
			stats.Paid++
			stats.TotalRevenue = stats.TotalRevenue.Add(
				finance.Convert(inv.Total, inv.Currency, displayCurrency, liveRates))
		}
		if inv.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// Delete elimina la factura; la cascada incluye sus pagos.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Get(id); err != nil {
		return err
	}
	uc.store.Delete(id)

	if uc.repo != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			defer cancel()
			if err := uc.repo.Delete(ctx, id); err != nil {
				uc.log.Warn().Err(err).Str("invoice_id", id).Msg("eliminación remota de factura falló")
			}
		}()
	}
	return nil
}

// putNumbered acuña el número y publica la factura bajo el mismo lock: dos
// creaciones concurrentes jamás obtienen la misma secuencia.
func (uc *InvoiceUseCase) putNumbered(inv *entity.Invoice) {
	uc.numMu.Lock()
	defer uc.numMu.Unlock()

	prefix := fmt.Sprintf("%s-%d-", uc.prefix, uc.now().Year())
	max := 0
	for _, existing := range uc.store.List() {
		if !strings.HasPrefix(existing.InvoiceNumber, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(existing.InvoiceNumber, prefix)); err == nil && n > max {
			max = n
		}
	}
	inv.InvoiceNumber = fmt.Sprintf("%s%04d", prefix, max+1)
	uc.store.Put(inv.ID, inv)
}

func (uc *InvoiceUseCase) persist(inv *entity.Invoice) {
	if uc.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := uc.repo.Save(ctx, inv); err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("sincronización remota de factura falló")
		}
	}()
}

// persistPayment guarda cabecera + pago atómicamente vía TxRunner; sin él,
// cae a dos escrituras best-effort.
func (uc *InvoiceUseCase) persistPayment(inv *entity.Invoice, p entity.Payment) {
	if uc.tx == nil {
		if uc.repo == nil {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			defer cancel()
			if err := uc.repo.Save(ctx, inv); err != nil {
				uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("sincronización remota de factura falló")
				return
			}
			if err := uc.repo.SavePayment(ctx, inv.ID, p); err != nil {
				uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("payment_id", p.ID).Msg("sincronización remota de pago falló")
			}
		}()
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		err := uc.tx.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
			if err := repo.Save(ctx, inv); err != nil {
				return err
			}
			return repo.SavePayment(ctx, inv.ID, p)
		})
		if err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Str("payment_id", p.ID).Msg("transacción de pago falló")
		}
	}()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
