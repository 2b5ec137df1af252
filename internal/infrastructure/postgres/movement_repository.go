package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var (
	_ repository.MovementReader = (*MovementRepo)(nil)
	_ repository.MovementWriter = (*MovementRepo)(nil)
)

// MovementRepo movimientos de un ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q      Querier
	schema Schema
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier, schema Schema) *MovementRepo {
	return &MovementRepo{q: q, schema: schema}
}

// movementRow fila desnormalizada del listado (movimiento + tipo + recurso + usuario).
type movementRow struct {
	ID             int64               `db:"id"`
	ResourceID     int64               `db:"resource_id"`
	TypeID         int64               `db:"type_id"`
	Quantity       decimal.Decimal     `db:"quantity"`
	MovementDate   time.Time           `db:"movement_date"`
	CreatedAt      time.Time           `db:"created_at"`
	UserID         *string             `db:"user_id"`
	Notes          *string             `db:"notes"`
	ReferenceType  *string             `db:"reference_type"`
	ReferenceID    *int64              `db:"reference_id"`
	TypeKey        string              `db:"type_key"`
	TypeName       string              `db:"type_name"`
	IncreasesStock *bool               `db:"increases_stock"`
	ResourceRef    *int64              `db:"resource_ref"`
	ResourceName   *string             `db:"resource_name"`
	ResourceSKU    *string             `db:"resource_sku"`
	ResourceStock  decimal.NullDecimal `db:"resource_stock"`
	UserRef        *string             `db:"user_ref"`
	UserName       *string             `db:"user_name"`
	UserLastName   *string             `db:"user_last_name"`
}

func (r *MovementRepo) listQuery(filter ledger.Filter, limit, offset int) (string, []any, error) {
	s := r.schema
	q := builder().Select(
		"m.id", "m.resource_id", "m.type_id", "m.quantity", "m.movement_date", "m.created_at",
		"m.user_id::text AS user_id", "m.notes", "m.reference_type", "m.reference_id",
		"t.key AS type_key", "t.name AS type_name", s.increasesStockColumn("t")+" AS increases_stock",
		"r.id AS resource_ref", "r.name AS resource_name", s.skuColumn()+" AS resource_sku", "r.stock AS resource_stock",
		"u.id::text AS user_ref", "u.name AS user_name", "u.last_name AS user_last_name",
	)
	q = movementsFrom(q, s).
		Join(s.Types + " t ON t.id = m.type_id").
		LeftJoin("users u ON u.id = m.user_id")
	q = applyFilter(q, s, filter).
		OrderBy("m.movement_date DESC", "m.id ASC").
		Limit(uint64(max(limit, 0))).
		Offset(uint64(max(offset, 0)))
	return q.ToSql()
}

// ListMovements ventana ordenada por fecha DESC, id ASC.
func (r *MovementRepo) ListMovements(ctx context.Context, filter ledger.Filter, limit, offset int) ([]entity.MovementView, error) {
	sql, args, err := r.listQuery(filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	views := make([]entity.MovementView, 0, len(rows))
	for _, row := range rows {
		v, err := row.toView()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (row movementRow) toView() (entity.MovementView, error) {
	var refKind string
	if row.ReferenceType != nil {
		refKind = *row.ReferenceType
	}
	ref, err := entity.DecodeReference(refKind, row.ReferenceID)
	if err != nil {
		return entity.MovementView{}, fmt.Errorf("movimiento %d: %w", row.ID, err)
	}
	v := entity.MovementView{
		Movement: entity.Movement{
			ID:         row.ID,
			ResourceID: row.ResourceID,
			TypeID:     row.TypeID,
			Quantity:   row.Quantity,
			Date:       row.MovementDate,
			CreatedAt:  row.CreatedAt,
			ActorID:    deref(row.UserID),
			Notes:      deref(row.Notes),
			Reference:  ref,
		},
		Type: entity.MovementType{
			ID:             row.TypeID,
			Key:            row.TypeKey,
			Name:           row.TypeName,
			IncreasesStock: row.IncreasesStock,
		},
	}
	if row.ResourceRef != nil {
		v.Resource = &entity.Resource{
			ID:    *row.ResourceRef,
			Name:  deref(row.ResourceName),
			SKU:   deref(row.ResourceSKU),
			Stock: row.ResourceStock.Decimal,
		}
	}
	if row.UserRef != nil {
		v.Actor = &entity.User{
			ID:       *row.UserRef,
			Name:     deref(row.UserName),
			LastName: deref(row.UserLastName),
		}
	}
	return v, nil
}

func (r *MovementRepo) countQuery(filter ledger.Filter) (string, []any, error) {
	q := movementsFrom(builder().Select("COUNT(*)"), r.schema)
	return applyFilter(q, r.schema, filter).ToSql()
}

// CountMovements total de movimientos que cumplen el filtro.
func (r *MovementRepo) CountMovements(ctx context.Context, filter ledger.Filter) (int64, error) {
	sql, args, err := r.countQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("build count movements: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return total, nil
}

func (r *MovementRepo) countByTypeQuery(filter ledger.Filter) (string, []any, error) {
	q := movementsFrom(builder().Select("m.type_id", "COUNT(*) AS movements"), r.schema)
	return applyFilter(q, r.schema, filter).GroupBy("m.type_id").OrderBy("m.type_id").ToSql()
}

// CountByType conteo filtrado agrupado por tipo.
func (r *MovementRepo) CountByType(ctx context.Context, filter ledger.Filter) ([]ledger.TypeCount, error) {
	sql, args, err := r.countByTypeQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build count by type: %w", err)
	}
	var counts []ledger.TypeCount
	if err := pgxscan.Select(ctx, r.q, &counts, sql, args...); err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	return counts, nil
}

// CountDistinctResources cantidad de recursos distintos en el conjunto filtrado.
func (r *MovementRepo) CountDistinctResources(ctx context.Context, filter ledger.Filter) (int64, error) {
	q := movementsFrom(builder().Select("COUNT(DISTINCT m.resource_id)"), r.schema)
	sql, args, err := applyFilter(q, r.schema, filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count distinct resources: %w", err)
	}
	var n int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count distinct resources: %w", err)
	}
	return n, nil
}

// AppendMovement inserta el movimiento y devuelve el id asignado.
func (r *MovementRepo) AppendMovement(ctx context.Context, m *entity.Movement) (int64, error) {
	refKind, refID := entity.EncodeReference(m.Reference)
	q := builder().Insert(r.schema.Movements).
		Columns("resource_id", "type_id", "quantity", "movement_date", "created_at",
			"user_id", "notes", "reference_type", "reference_id").
		Values(m.ResourceID, m.TypeID, m.Quantity, m.Date, m.CreatedAt,
			nullIfEmpty(m.ActorID), nullIfEmpty(m.Notes), refKind, refID).
		Suffix("RETURNING id")
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build append movement: %w", err)
	}
	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("append movement: %w", translateError(err))
	}
	return id, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
