package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var (
	_ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)
	_ repository.ResourceRepository     = (*ResourceRepo)(nil)
)

// MovementTypeRepo catálogo de tipos (semilla de la migración).
type MovementTypeRepo struct {
	q      Querier
	schema Schema
}

// NewMovementTypeRepository construye el adaptador.
func NewMovementTypeRepository(q Querier, schema Schema) *MovementTypeRepo {
	return &MovementTypeRepo{q: q, schema: schema}
}

type movementTypeRow struct {
	ID             int64  `db:"id"`
	Key            string `db:"key"`
	Name           string `db:"name"`
	IncreasesStock *bool  `db:"increases_stock"`
}

// ListMovementTypes todos los tipos ordenados por id.
func (r *MovementTypeRepo) ListMovementTypes(ctx context.Context) ([]entity.MovementType, error) {
	sql, args, err := builder().
		Select("t.id", "t.key", "t.name", r.schema.increasesStockColumn("t")+" AS increases_stock").
		From(r.schema.Types + " t").
		OrderBy("t.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movement types: %w", err)
	}
	var rows []movementTypeRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list movement types: %w", err)
	}
	types := make([]entity.MovementType, 0, len(rows))
	for _, row := range rows {
		types = append(types, entity.MovementType{
			ID:             row.ID,
			Key:            row.Key,
			Name:           row.Name,
			IncreasesStock: row.IncreasesStock,
		})
	}
	return types, nil
}

// ResourceRepo producto o insumo, según el esquema. Solo se usa dentro de la tx de alta.
type ResourceRepo struct {
	q      Querier
	schema Schema
}

// NewResourceRepository construye el adaptador.
func NewResourceRepository(q Querier, schema Schema) *ResourceRepo {
	return &ResourceRepo{q: q, schema: schema}
}

type resourceRow struct {
	ID        int64           `db:"id"`
	Name      string          `db:"name"`
	SKU       *string         `db:"sku"`
	Stock     decimal.Decimal `db:"stock"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// GetForUpdate obtiene el recurso bloqueando la fila (SELECT FOR UPDATE). nil, nil si no existe.
func (r *ResourceRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Resource, error) {
	sql, args, err := builder().
		Select("r.id", "r.name", r.schema.skuColumn()+" AS sku", "r.stock", "r.updated_at").
		From(r.schema.Resources + " r").
		Where(squirrel.Eq{"r.id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource: %w", err)
	}
	var row resourceRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource for update: %w", err)
	}
	return &entity.Resource{
		ID:        row.ID,
		Name:      row.Name,
		SKU:       deref(row.SKU),
		Stock:     row.Stock,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// UpdateStock persiste el stock del recurso.
func (r *ResourceRepo) UpdateStock(ctx context.Context, res *entity.Resource) error {
	sql, args, err := builder().Update(r.schema.Resources).
		Set("stock", res.Stock).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock: %w", translateError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
