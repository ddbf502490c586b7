package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/studio-ops/internal/domain"
)

// Estados del ciclo de vida de una cotización.
// Ruta positiva: draft -> sent -> under_review -> approved -> won.
// Ruta negativa: sent|under_review|approved -> rejected|expired|dead.
// won, rejected, expired y dead son terminales: no exponen transiciones de salida.
const (
	QuoteStatusDraft       = "draft"
	QuoteStatusSent        = "sent"
	QuoteStatusUnderReview = "under_review"
	QuoteStatusApproved    = "approved"
	QuoteStatusWon         = "won"
	QuoteStatusRejected    = "rejected"
	QuoteStatusExpired     = "expired"
	QuoteStatusDead        = "dead"
)

var quoteStatuses = map[string]bool{
	QuoteStatusDraft:       true,
	QuoteStatusSent:        true,
	QuoteStatusUnderReview: true,
	QuoteStatusApproved:    true,
	QuoteStatusWon:         true,
	QuoteStatusRejected:    true,
	QuoteStatusExpired:     true,
	QuoteStatusDead:        true,
}

// ValidQuoteStatus indica si el estado existe en el ciclo de vida.
func ValidQuoteStatus(s string) bool { return quoteStatuses[s] }

// IsTerminalQuoteStatus indica si el estado no admite más transiciones.
func IsTerminalQuoteStatus(s string) bool {
	return s == QuoteStatusWon || s == QuoteStatusRejected ||
		s == QuoteStatusExpired || s == QuoteStatusDead
}

// IsNegativeTerminal indica si el estado es un cierre negativo (exige motivo de pérdida).
func IsNegativeTerminal(s string) bool {
	return s == QuoteStatusRejected || s == QuoteStatusExpired || s == QuoteStatusDead
}

// LossReason motivo de pérdida de una cotización. Obligatorio al entrar a un
// estado terminal negativo para que la analítica de pérdidas nunca quede
// silenciosamente incompleta.
type LossReason string

const (
	LossReasonPrice              LossReason = "price"
	LossReasonTiming             LossReason = "timing"
	LossReasonLostToCompetitor   LossReason = "lost_to_competitor"
	LossReasonNoBudget           LossReason = "no_budget"
	LossReasonRequirements       LossReason = "requirements_mismatch"
	LossReasonClientUnresponsive LossReason = "client_unresponsive"
	LossReasonOther              LossReason = "other"
)

var lossReasons = map[LossReason]bool{
	LossReasonPrice:              true,
	LossReasonTiming:             true,
	LossReasonLostToCompetitor:   true,
	LossReasonNoBudget:           true,
	LossReasonRequirements:       true,
	LossReasonClientUnresponsive: true,
	LossReasonOther:              true,
}

// ValidLossReason indica si el motivo pertenece a la enumeración.
func ValidLossReason(r LossReason) bool { return lossReasons[r] }

// LineItem ítem de una subsección. Su aporte al total es rate × quantity × days.
// Pertenece exclusivamente a su subsección; se elimina junto con ella.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Days        decimal.Decimal `json:"days"`
	RateCost    decimal.Decimal `json:"rate_cost"`
	RateCharge  decimal.Decimal `json:"rate_charge"`
}

// NormalizeLineItem aplica los defaults del modelo una sola vez, en la frontera:
// quantity/days ausentes valen 1 (un ítem sin multiplicador es "una unidad, un día")
// y los montos nunca son negativos. Así los cálculos posteriores no repiten defaults.
func NormalizeLineItem(item LineItem) LineItem {
	if item.Quantity.IsZero() {
		item.Quantity = decimal.NewFromInt(1)
	}
	if item.Days.IsZero() {
		item.Days = decimal.NewFromInt(1)
	}
	if item.Quantity.IsNegative() {
		item.Quantity = decimal.Zero
	}
	if item.Days.IsNegative() {
		item.Days = decimal.Zero
	}
	if item.RateCost.IsNegative() {
		item.RateCost = decimal.Zero
	}
	if item.RateCharge.IsNegative() {
		item.RateCharge = decimal.Zero
	}
	return item
}

// Subsection agrupa ítems dentro de una sección.
type Subsection struct {
	Name  string     `json:"name"`
	Items []LineItem `json:"items"`
}

// Section sección de la cotización (ej. Crew, Equipment, Post).
type Section struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Subsections []Subsection `json:"subsections"`
}

// StatusChange entrada inmutable del historial de estados.
type StatusChange struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	At         time.Time  `json:"at"`
	Note       string     `json:"note,omitempty"`
	LossReason LossReason `json:"loss_reason,omitempty"`
	LossNotes  string     `json:"loss_notes,omitempty"`
}

// QuoteClient datos del cliente en la cotización.
type QuoteClient struct {
	Company   string `json:"company"`
	ContactID string `json:"contact_id,omitempty"`
	Contact   string `json:"contact"`
	Role      string `json:"role,omitempty"` // interno, no se muestra en la cotización
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes,omitempty"` // interno
}

// QuoteProject datos del proyecto cotizado.
type QuoteProject struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Venue       string `json:"venue"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

// Quote cotización. La moneda se fija al crearla (todos sus ítems se denominan
// en ella) y el número se asigna una sola vez, nunca se reutiliza.
// StatusHistory es append-only: solo crece, jamás se muta ni se poda.
type Quote struct {
	ID              string         `json:"id"`
	QuoteNumber     string         `json:"quote_number"`
	Currency        string         `json:"currency"`
	Region          string         `json:"region"`
	Status          string         `json:"status"`
	QuoteDate       time.Time      `json:"quote_date"`
	ValidityDays    int            `json:"validity_days"`
	Client          QuoteClient    `json:"client"`
	Project         QuoteProject   `json:"project"`
	Sections        []Section      `json:"sections"`
	Fees            FeeConfig      `json:"fees"`
	StatusHistory   []StatusChange `json:"status_history"`
	LostReason      LossReason     `json:"lost_reason,omitempty"`
	LostReasonNotes string         `json:"lost_reason_notes,omitempty"`
	InternalNotes   string         `json:"internal_notes,omitempty"`
	NextFollowUp    *time.Time     `json:"next_follow_up,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Transition mueve la cotización a newStatus aplicando las reglas del ciclo de vida:
//
//   - newStatus debe existir en la enumeración.
//   - Un estado terminal no admite salidas.
//   - Entre estados no terminales el modelo es deliberadamente permisivo: una
//     cotización real rebota entre sent/under_review/approved.
//   - Entrar a rejected|expired|dead exige un LossReason válido; si falta, la
//     transición es un no-op (sin cambio de estado ni entrada de historial).
//
// Toda transición exitosa agrega exactamente una entrada inmutable al historial.
func (q *Quote) Transition(newStatus string, at time.Time, note string, reason LossReason, lossNotes string) error {
	if !ValidQuoteStatus(newStatus) {
		return domain.ErrInvalidStatus
	}
	if IsTerminalQuoteStatus(q.Status) {
		return domain.ErrTerminalStatus
	}
	if IsNegativeTerminal(newStatus) && !ValidLossReason(reason) {
		return domain.ErrLossReasonRequired
	}

	change := StatusChange{
		From: q.Status,
		To:   newStatus,
		At:   at,
		Note: note,
	}
	if IsNegativeTerminal(newStatus) {
		change.LossReason = reason
		change.LossNotes = lossNotes
		q.LostReason = reason
		q.LostReasonNotes = lossNotes
	}

	q.StatusHistory = append(q.StatusHistory, change)
	q.Status = newStatus
	q.UpdatedAt = at
	return nil
}
