package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ ledgerapp.Store = (*LedgerStore)(nil)

// LedgerStore ledger completo sobre PostgreSQL: lecturas contra el pool, altas dentro de
// una transacción y lecturas consistentes dentro de una instantánea de solo lectura.
type LedgerStore struct {
	*MovementRepo
	*MovementTypeRepo
	pool   *pgxpool.Pool
	schema Schema
}

// NewLedgerStore construye el store del ledger con el pool.
func NewLedgerStore(pool *pgxpool.Pool, schema Schema) *LedgerStore {
	return &LedgerStore{
		MovementRepo:     NewMovementRepository(pool, schema),
		MovementTypeRepo: NewMovementTypeRepository(pool, schema),
		pool:             pool,
		schema:           schema,
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (s *LedgerStore) Run(ctx context.Context, fn func(
	movRepo repository.MovementWriter,
	resourceRepo repository.ResourceRepository,
) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMovementRepository(tx, s.schema), NewResourceRepository(tx, s.schema)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Snapshot ejecuta fn en una transacción REPEATABLE READ de solo lectura: todas las
// consultas de fn ven la misma instantánea.
func (s *LedgerStore) Snapshot(ctx context.Context, fn func(reader repository.MovementReader) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMovementRepository(tx, s.schema)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
