package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

func newQuote(status string) *entity.Quote {
	return &entity.Quote{
		ID:          "q-1",
		QuoteNumber: "QT-2026-0001",
		Currency:    "USD",
		Status:      status,
	}
}

var now = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

// TestTransition_RutaPositiva: draft -> sent -> under_review -> approved -> won,
// cada paso agrega exactamente una entrada al historial.
func TestTransition_RutaPositiva(t *testing.T) {
	q := newQuote(entity.QuoteStatusDraft)

	path := []string{
		entity.QuoteStatusSent,
		entity.QuoteStatusUnderReview,
		entity.QuoteStatusApproved,
		entity.QuoteStatusWon,
	}
	for i, status := range path {
		require.NoError(t, q.Transition(status, now, "", "", ""))
		assert.Equal(t, status, q.Status)
		assert.Len(t, q.StatusHistory, i+1, "cada transición agrega exactamente una entrada")
	}

	last := q.StatusHistory[len(q.StatusHistory)-1]
	assert.Equal(t, entity.QuoteStatusApproved, last.From)
	assert.Equal(t, entity.QuoteStatusWon, last.To)
}

// TestTransition_SinMotivoDePerdida: entrar a dead sin lossReason es un no-op —
// ni el estado ni el largo del historial cambian.
func TestTransition_SinMotivoDePerdida(t *testing.T) {
	q := newQuote(entity.QuoteStatusSent)

	err := q.Transition(entity.QuoteStatusDead, now, "", "", "")

	assert.ErrorIs(t, err, domain.ErrLossReasonRequired)
	assert.Equal(t, entity.QuoteStatusSent, q.Status, "el estado no debe cambiar")
	assert.Empty(t, q.StatusHistory, "no debe agregarse entrada de historial")
}

// TestTransition_ConMotivoDePerdida: con motivo válido el estado cambia, el
// historial crece y la nueva entrada apunta al estado terminal.
func TestTransition_ConMotivoDePerdida(t *testing.T) {
	q := newQuote(entity.QuoteStatusSent)

	err := q.Transition(entity.QuoteStatusDead, now, "cliente desapareció", entity.LossReasonClientUnresponsive, "sin respuesta en 3 meses")

	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusDead, q.Status)
	require.Len(t, q.StatusHistory, 1)
	assert.Equal(t, entity.QuoteStatusDead, q.StatusHistory[0].To)
	assert.Equal(t, entity.LossReasonClientUnresponsive, q.StatusHistory[0].LossReason)
	assert.Equal(t, entity.LossReasonClientUnresponsive, q.LostReason)
	assert.Equal(t, "sin respuesta en 3 meses", q.LostReasonNotes)
}

// TestTransition_MotivoInvalido: un motivo fuera de la enumeración cuenta como ausente.
func TestTransition_MotivoInvalido(t *testing.T) {
	q := newQuote(entity.QuoteStatusApproved)

	err := q.Transition(entity.QuoteStatusRejected, now, "", entity.LossReason("gremlins"), "")

	assert.ErrorIs(t, err, domain.ErrLossReasonRequired)
	assert.Equal(t, entity.QuoteStatusApproved, q.Status)
}

// TestTransition_EstadoTerminalSinSalidas: won/rejected/expired/dead no exponen transiciones.
func TestTransition_EstadoTerminalSinSalidas(t *testing.T) {
	for _, terminal := range []string{
		entity.QuoteStatusWon,
		entity.QuoteStatusRejected,
		entity.QuoteStatusExpired,
		entity.QuoteStatusDead,
	} {
		q := newQuote(terminal)
		err := q.Transition(entity.QuoteStatusDraft, now, "", "", "")
		assert.ErrorIs(t, err, domain.ErrTerminalStatus, "estado %s", terminal)
		assert.Equal(t, terminal, q.Status)
		assert.Empty(t, q.StatusHistory)
	}
}

// TestTransition_PermisivaEntreNoTerminales: el modelo admite rebotes entre
// sent/under_review/approved, incluso de vuelta a draft.
func TestTransition_PermisivaEntreNoTerminales(t *testing.T) {
	q := newQuote(entity.QuoteStatusApproved)

	require.NoError(t, q.Transition(entity.QuoteStatusUnderReview, now, "cliente pidió revisión", "", ""))
	require.NoError(t, q.Transition(entity.QuoteStatusDraft, now, "", "", ""))
	assert.Equal(t, entity.QuoteStatusDraft, q.Status)
	assert.Len(t, q.StatusHistory, 2)
}

func TestTransition_EstadoDesconocido(t *testing.T) {
	q := newQuote(entity.QuoteStatusDraft)
	err := q.Transition("negotiating", now, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// TestNormalizeLineItem: defaults una sola vez en la frontera del modelo.
func TestNormalizeLineItem(t *testing.T) {
	got := entity.NormalizeLineItem(entity.LineItem{
		RateCharge: decimal.NewFromInt(10),
		RateCost:   decimal.NewFromInt(-5), // negativo colapsa a 0
	})

	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(1)), "quantity ausente vale 1")
	assert.True(t, got.Days.Equal(decimal.NewFromInt(1)), "days ausente vale 1")
	assert.True(t, got.RateCost.IsZero(), "los montos nunca son negativos")
	assert.True(t, got.RateCharge.Equal(decimal.NewFromInt(10)))
}
