package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidStatus      = errors.New("estado desconocido")
	ErrTerminalStatus     = errors.New("el estado actual es terminal, no admite transiciones")
	ErrLossReasonRequired = errors.New("se requiere un motivo de pérdida válido")
	ErrInvalidPayment     = errors.New("el monto del pago debe ser mayor que cero")
)
