package postgres

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/bodega-api/internal/domain/ledger"
)

// movementsFrom FROM común del listado, los conteos y la exportación. El LEFT JOIN al
// recurso se mantiene aunque no haya búsqueda para que los tres usen el mismo predicado.
func movementsFrom(q squirrel.SelectBuilder, s Schema) squirrel.SelectBuilder {
	return q.From(s.Movements + " m").
		LeftJoin(s.Resources + " r ON r.id = m.resource_id")
}

// applyFilter traduce ledger.Filter a WHERE. Debe coincidir con ledger.Filter.Matches.
func applyFilter(q squirrel.SelectBuilder, s Schema, f ledger.Filter) squirrel.SelectBuilder {
	if f.ResourceID != nil {
		q = q.Where(squirrel.Eq{"m.resource_id": *f.ResourceID})
	}
	if f.TypeID != nil {
		q = q.Where(squirrel.Eq{"m.type_id": *f.TypeID})
	}
	if f.ReferenceType != nil {
		q = q.Where(squirrel.Eq{"m.reference_type": *f.ReferenceType})
	}
	if f.ActorID != nil {
		q = q.Where(squirrel.Eq{"m.user_id": *f.ActorID})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"m.movement_date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"m.movement_date": *f.DateTo})
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		search := squirrel.Or{
			squirrel.ILike{"r.name": pattern},
		}
		if s.HasSKU {
			search = append(search, squirrel.ILike{"r.sku": pattern})
		}
		search = append(search, squirrel.ILike{"m.notes": pattern})
		q = q.Where(search)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike trata % y _ del usuario como literales.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
