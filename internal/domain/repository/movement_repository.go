package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
)

// MovementReader consultas de solo lectura del ledger. Todas aplican el mismo ledger.Filter.
type MovementReader interface {
	// ListMovements devuelve la ventana [offset, offset+limit) ordenada por fecha DESC, id ASC.
	ListMovements(ctx context.Context, filter ledger.Filter, limit, offset int) ([]entity.MovementView, error)
	CountMovements(ctx context.Context, filter ledger.Filter) (int64, error)
	// CountByType conteo de movimientos filtrados agrupado por tipo.
	CountByType(ctx context.Context, filter ledger.Filter) ([]ledger.TypeCount, error)
	CountDistinctResources(ctx context.Context, filter ledger.Filter) (int64, error)
}

// MovementWriter inserción de movimientos (el ledger nunca actualiza ni borra).
type MovementWriter interface {
	// AppendMovement persiste el movimiento y devuelve el id asignado.
	AppendMovement(ctx context.Context, movement *entity.Movement) (int64, error)
}
