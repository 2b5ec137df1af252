package ledger

import "github.com/jhoicas/bodega-api/internal/domain/entity"

// StatsSummary métricas derivadas del conjunto filtrado. Nunca se cachean.
type StatsSummary struct {
	TotalMovements            int64
	IncomingCount             int64
	OutgoingCount             int64
	DistinctAffectedResources int64
}

// TypeCount cantidad de movimientos filtrados de un tipo.
type TypeCount struct {
	TypeID    int64 `db:"type_id"`
	Movements int64 `db:"movements"`
}

// Summarize agrega los conteos por tipo aplicando la polaridad del ledger.
// Un tipo ausente del catálogo cuenta en el total pero en ningún bucket.
func Summarize(counts []TypeCount, distinctResources int64, types []entity.MovementType, polarity PolarityFunc) StatsSummary {
	byID := make(map[int64]entity.MovementType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}
	out := StatsSummary{DistinctAffectedResources: distinctResources}
	for _, c := range counts {
		out.TotalMovements += c.Movements
		t, ok := byID[c.TypeID]
		if !ok {
			continue
		}
		switch polarity(t) {
		case Increase:
			out.IncomingCount += c.Movements
		case Decrease:
			out.OutgoingCount += c.Movements
		}
	}
	return out
}
