package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

// Store persistencia de un ledger (postgres o memoria).
type Store interface {
	repository.MovementReader
	repository.MovementTypeRepository

	// Run ejecuta fn dentro de una transacción con repos atados a ella; Commit si fn no falla.
	Run(ctx context.Context, fn func(
		movRepo repository.MovementWriter,
		resourceRepo repository.ResourceRepository,
	) error) error

	// Snapshot ejecuta fn sobre una vista de solo lectura consistente (una misma instantánea
	// para todas las consultas que haga fn).
	Snapshot(ctx context.Context, fn func(reader repository.MovementReader) error) error
}

// IdempotencyStore reserva claves Idempotency-Key. Reserve devuelve false si la clave ya existía.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
