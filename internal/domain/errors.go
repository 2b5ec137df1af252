package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Ledger de movimientos.
	ErrNegativeQuantity    = errors.New("la cantidad no puede ser negativa")
	ErrUnknownMovementType = errors.New("tipo de movimiento inexistente")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidReference    = errors.New("referencia de movimiento inválida")
	ErrExportTooLarge      = errors.New("la exportación supera el máximo de filas permitido")
	ErrDuplicateRequest    = errors.New("solicitud duplicada")
)
