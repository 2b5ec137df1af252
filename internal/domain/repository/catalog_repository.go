package repository

import (
	"context"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// MovementTypeRepository catálogo de tipos de movimiento (semilla, solo lectura).
type MovementTypeRepository interface {
	ListMovementTypes(ctx context.Context) ([]entity.MovementType, error)
}

// ResourceRepository acceso al recurso (producto o insumo) dentro de la transacción de alta.
// GetForUpdate bloquea la fila para serializar movimientos concurrentes del mismo recurso.
type ResourceRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*entity.Resource, error)
	UpdateStock(ctx context.Context, resource *entity.Resource) error
}
