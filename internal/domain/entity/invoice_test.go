package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/studio-ops/internal/domain"
	"github.com/tu-usuario/studio-ops/internal/domain/entity"
)

func newInvoice(total string) *entity.Invoice {
	return &entity.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-2026-0001",
		Currency:      "USD",
		Status:        entity.InvoiceStatusSent,
		Total:         decimal.RequireFromString(total),
		PaidAmount:    decimal.Zero,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
	}
}

func payment(amount string) entity.Payment {
	return entity.Payment{
		ID:         "p-" + amount,
		Amount:     decimal.RequireFromString(amount),
		Date:       now,
		Method:     entity.PaymentMethodBankTransfer,
		RecordedAt: now,
	}
}

// TestApplyPayment_Convergencia: pagos [40, 35, 25] contra total 100 producen
// paidAmount [40, 75, 100] y estados [partial, partial, paid], en ese orden.
func TestApplyPayment_Convergencia(t *testing.T) {
	inv := newInvoice("100")

	steps := []struct {
		amount     string
		wantPaid   string
		wantStatus string
	}{
		{"40", "40", entity.InvoiceStatusPartial},
		{"35", "75", entity.InvoiceStatusPartial},
		{"25", "100", entity.InvoiceStatusPaid},
	}
	for i, step := range steps {
		require.NoError(t, inv.ApplyPayment(payment(step.amount)))
		assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString(step.wantPaid)),
			"paso %d: PaidAmount=%s", i+1, inv.PaidAmount)
		assert.Equal(t, step.wantStatus, inv.Status, "paso %d", i+1)
	}

	assert.Len(t, inv.Payments, 3, "el libro de pagos solo crece")
	assert.True(t, inv.Balance().IsZero())
	require.NotNil(t, inv.PaidDate, "PaidDate se fija al completar el pago")
}

// TestApplyPayment_MontoNoPositivo: un pago <= 0 se rechaza antes de agregarse.
func TestApplyPayment_MontoNoPositivo(t *testing.T) {
	inv := newInvoice("100")

	for _, amount := range []string{"0", "-10"} {
		err := inv.ApplyPayment(payment(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidPayment)
	}
	assert.Empty(t, inv.Payments)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.Equal(t, entity.InvoiceStatusSent, inv.Status)
}

// TestApplyPayment_Sobrepago: el núcleo admite sobrepago como saldo a favor;
// el estado pasa a paid y el balance queda negativo.
func TestApplyPayment_Sobrepago(t *testing.T) {
	inv := newInvoice("100")

	require.NoError(t, inv.ApplyPayment(payment("150")))

	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.Balance().Equal(decimal.RequireFromString("-50")),
		"el sobrepago produce saldo a favor, balance=%s", inv.Balance())
}

// TestApplyPayment_TotalCero: una factura con total cero queda pagada con el
// primer pago positivo (paidAmount >= total), no atascada en partial.
func TestApplyPayment_TotalCero(t *testing.T) {
	inv := newInvoice("0")

	require.NoError(t, inv.ApplyPayment(payment("10")))

	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.Balance().Equal(decimal.RequireFromString("-10")))
	require.NotNil(t, inv.PaidDate)
}

// TestApplyPayment_Cancelada: una factura cancelada no acepta pagos.
func TestApplyPayment_Cancelada(t *testing.T) {
	inv := newInvoice("100")
	inv.Status = entity.InvoiceStatusCancelled

	err := inv.ApplyPayment(payment("50"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, inv.Payments)
}

// TestDisplayStatus_OverdueDerivado: "overdue" se calcula en lectura y no toca
// el estado almacenado; el estado real (partial) se conserva debajo.
func TestDisplayStatus_OverdueDerivado(t *testing.T) {
	inv := newInvoice("100")
	require.NoError(t, inv.ApplyPayment(payment("40")))

	beforeDue := inv.DueDate.AddDate(0, 0, -1)
	afterDue := inv.DueDate.AddDate(0, 0, 1)

	assert.Equal(t, entity.InvoiceStatusPartial, inv.DisplayStatus(beforeDue))
	assert.Equal(t, entity.InvoiceStatusOverdue, inv.DisplayStatus(afterDue))
	assert.Equal(t, entity.InvoiceStatusPartial, inv.Status,
		"el estado almacenado nunca cambia por vencimiento")
}

// TestDisplayStatus_CerradasNuncaVencen: paid y cancelled no se presentan como overdue.
func TestDisplayStatus_CerradasNuncaVencen(t *testing.T) {
	afterDue := now.AddDate(0, 1, 0)

	inv := newInvoice("100")
	require.NoError(t, inv.ApplyPayment(payment("100")))
	assert.Equal(t, entity.InvoiceStatusPaid, inv.DisplayStatus(afterDue))

	cancelled := newInvoice("100")
	cancelled.Status = entity.InvoiceStatusCancelled
	assert.Equal(t, entity.InvoiceStatusCancelled, cancelled.DisplayStatus(afterDue))
}

func TestBalance(t *testing.T) {
	inv := newInvoice("250.50")
	require.NoError(t, inv.ApplyPayment(payment("100.25")))
	assert.True(t, inv.Balance().Equal(decimal.RequireFromString("150.25")))
}
