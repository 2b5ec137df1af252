package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
)

// Productos: entrada 10, salida 4 y ajuste 1 (neutro) sobre el recurso #1.
func TestSummarize_ProductosAjusteNeutro(t *testing.T) {
	counts := []ledger.TypeCount{
		{TypeID: tipoEntrada.ID, Movements: 1},
		{TypeID: tipoSalida.ID, Movements: 1},
		{TypeID: tipoAjuste.ID, Movements: 1},
	}
	types := []entity.MovementType{tipoEntrada, tipoSalida, tipoAjuste}

	got := ledger.Summarize(counts, 1, types, ledger.StoredPolarity)

	assert.Equal(t, ledger.StatsSummary{
		TotalMovements:            3,
		IncomingCount:             1,
		OutgoingCount:             1,
		DistinctAffectedResources: 1,
	}, got)
}

// Insumos: "ajuste" cuenta en el total pero en ningún bucket; "consumo" resta.
func TestSummarize_InsumosAjusteExcluido(t *testing.T) {
	counts := []ledger.TypeCount{
		{TypeID: insumoEntrada.ID, Movements: 5},
		{TypeID: insumoSalida.ID, Movements: 2},
		{TypeID: insumoConsumo.ID, Movements: 3},
		{TypeID: insumoAjuste.ID, Movements: 4},
	}
	types := []entity.MovementType{insumoEntrada, insumoSalida, insumoConsumo, insumoAjuste}

	got := ledger.Summarize(counts, 3, types, ledger.KeyPolarity)

	assert.Equal(t, int64(14), got.TotalMovements)
	assert.Equal(t, int64(5), got.IncomingCount)
	assert.Equal(t, int64(5), got.OutgoingCount)
	assert.Equal(t, int64(3), got.DistinctAffectedResources)
	assert.LessOrEqual(t, got.IncomingCount+got.OutgoingCount, got.TotalMovements)
}

func TestSummarize_TipoFueraDelCatalogoSoloSumaAlTotal(t *testing.T) {
	counts := []ledger.TypeCount{
		{TypeID: tipoEntrada.ID, Movements: 2},
		{TypeID: 99, Movements: 3},
	}
	got := ledger.Summarize(counts, 1, []entity.MovementType{tipoEntrada}, ledger.StoredPolarity)

	assert.Equal(t, int64(5), got.TotalMovements)
	assert.Equal(t, int64(2), got.IncomingCount)
	assert.Equal(t, int64(0), got.OutgoingCount)
}

func TestSummarize_SinMovimientos(t *testing.T) {
	got := ledger.Summarize(nil, 0, []entity.MovementType{tipoEntrada}, ledger.StoredPolarity)
	assert.Equal(t, ledger.StatsSummary{}, got)
}
