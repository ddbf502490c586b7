package dto

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
	"github.com/tu-usuario/studio-ops/internal/domain/finance"
)

// CreateQuoteRequest body para POST /api/quotes.
// La moneda queda fija al crear: todos los ítems se denominan en ella.
type CreateQuoteRequest struct {
	Currency     string            `json:"currency"`
	Region       string            `json:"region,omitempty"`
	ValidityDays int               `json:"validity_days,omitempty"`
	Client       QuoteClientDTO    `json:"client"`
	Project      QuoteProjectDTO   `json:"project"`
}

// QuoteClientDTO datos del cliente.
type QuoteClientDTO struct {
	Company   string `json:"company"`
	ContactID string `json:"contact_id,omitempty"`
	Contact   string `json:"contact,omitempty"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// QuoteProjectDTO datos del proyecto.
type QuoteProjectDTO struct {
	Title       string `json:"title"`
	Type        string `json:"type,omitempty"`
	Venue       string `json:"venue,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// LineItemDTO ítem en la frontera HTTP. Los números llegan como float y se
// normalizan UNA vez al convertir a entidad (NaN/Inf -> 0, defaults de
// quantity/days, montos nunca negativos).
type LineItemDTO struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity,omitempty"`
	Days        float64 `json:"days,omitempty"`
	RateCost    float64 `json:"rate_cost,omitempty"`
	RateCharge  float64 `json:"rate_charge,omitempty"`
}

// ToEntity normaliza el ítem en la frontera del modelo.
func (d LineItemDTO) ToEntity() entity.LineItem {
	return entity.NormalizeLineItem(entity.LineItem{
		ID:          d.ID,
		Description: d.Description,
		Quantity:    finance.DecimalFromFloat(d.Quantity),
		Days:        finance.DecimalFromFloat(d.Days),
		RateCost:    finance.DecimalFromFloat(d.RateCost),
		RateCharge:  finance.DecimalFromFloat(d.RateCharge),
	})
}

// SubsectionDTO subsección con sus ítems.
type SubsectionDTO struct {
	Name  string        `json:"name"`
	Items []LineItemDTO `json:"items"`
}

// SectionDTO sección de la cotización.
type SectionDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Subsections []SubsectionDTO `json:"subsections"`
}

// UpdateSectionsRequest body para PUT /api/quotes/:id/sections.
type UpdateSectionsRequest struct {
	Sections []SectionDTO `json:"sections"`
}

// ToEntity convierte y normaliza todas las secciones.
func (r UpdateSectionsRequest) ToEntity() []entity.Section {
	sections := make([]entity.Section, 0, len(r.Sections))
	for _, s := range r.Sections {
		subs := make([]entity.Subsection, 0, len(s.Subsections))
		for _, sub := range s.Subsections {
			items := make([]entity.LineItem, 0, len(sub.Items))
			for _, item := range sub.Items {
				items = append(items, item.ToEntity())
			}
			subs = append(subs, entity.Subsection{Name: sub.Name, Items: items})
		}
		sections = append(sections, entity.Section{ID: s.ID, Name: s.Name, Subsections: subs})
	}
	return sections
}

// FeeDTO definición de fee en la frontera.
type FeeDTO struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Kind  string  `json:"kind"`  // percentage | fixed
	Basis string  `json:"basis"` // pre_tax | post_tax
	Value float64 `json:"value"`
}

// SetFeesRequest body para PUT /api/quotes/:id/fees. El orden de la lista se
// preserva tal cual: determina el orden de aplicación.
type SetFeesRequest struct {
	Fees []FeeDTO `json:"fees"`
}

// ToEntity convierte la configuración de fees.
func (r SetFeesRequest) ToEntity() entity.FeeConfig {
	fees := make(entity.FeeConfig, 0, len(r.Fees))
	for _, f := range r.Fees {
		fees = append(fees, entity.Fee{
			ID:    f.ID,
			Label: f.Label,
			Kind:  entity.FeeKind(f.Kind),
			Basis: entity.FeeBasis(f.Basis),
			Value: finance.DecimalFromFloat(f.Value),
		})
	}
	return fees
}

// UpdateNotesRequest body para PUT /api/quotes/:id/notes.
type UpdateNotesRequest struct {
	InternalNotes string `json:"internal_notes"`
}

// SetFollowUpRequest body para PUT /api/quotes/:id/follow-up.
// Fecha en formato YYYY-MM-DD; vacía limpia el seguimiento.
type SetFollowUpRequest struct {
	NextFollowUp string `json:"next_follow_up"`
}

// TransitionStatusRequest body para POST /api/quotes/:id/status.
type TransitionStatusRequest struct {
	Status     string `json:"status"`
	Note       string `json:"note,omitempty"`
	LossReason string `json:"loss_reason,omitempty"`
	LossNotes  string `json:"loss_notes,omitempty"`
}

// FeeLineResponse línea del desglose de fees.
type FeeLineResponse struct {
	FeeID  string          `json:"fee_id"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// FinancialsResponse totales derivados de una cotización, recalculados en cada
// lectura. Si se pidió una moneda de visualización distinta, los montos vienen
// convertidos con tasas en vivo y DisplayCurrency la indica.
type FinancialsResponse struct {
	Currency        string            `json:"currency"`
	DisplayCurrency string            `json:"display_currency,omitempty"`
	TotalCharge     decimal.Decimal   `json:"total_charge"`
	TotalCost       decimal.Decimal   `json:"total_cost"`
	Profit          decimal.Decimal   `json:"profit"`
	Margin          decimal.Decimal   `json:"margin"`
	GrandTotal      decimal.Decimal   `json:"grand_total"`
	GrandTotalText  string            `json:"grand_total_text"`
	FeeBreakdown    []FeeLineResponse `json:"fee_breakdown"`
	ItemCount       int               `json:"item_count"`
}
