package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
	"github.com/jhoicas/bodega-api/internal/infrastructure/cache"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

const (
	tipoEntrada int64 = 1
	tipoSalida  int64 = 2
	tipoAjuste  int64 = 3

	insumoEntrada int64 = 1
	insumoConsumo int64 = 3
	insumoAjuste  int64 = 4
)

type fixture struct {
	svc   *ledgerapp.Service
	store *memory.Store
	idem  *cache.MemoryIdempotencyStore
}

func testConfig() ledgerapp.Config {
	return ledgerapp.Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		ExportMaxRows:   1000,
		Location:        time.UTC,
		IdempotencyTTL:  time.Hour,
	}
}

func newFixture(t *testing.T, def ledger.Definition, cfg ledgerapp.Config) fixture {
	t.Helper()
	types := memory.ProductTypes()
	if def.Kind == ledger.KindSupplies {
		types = memory.SupplyTypes()
	}
	store := memory.NewStore(types)
	idem := cache.NewMemoryIdempotencyStore().WithClock(func() time.Time { return fixedNow })
	svc := ledgerapp.NewService(def, store, idem, cfg, nil).WithClock(func() time.Time { return fixedNow })
	return fixture{svc: svc, store: store, idem: idem}
}

func (f fixture) putResource(id int64, name, sku string, stock int64) {
	f.store.PutResource(entity.Resource{ID: id, Name: name, SKU: sku, Stock: decimal.NewFromInt(stock)})
}

func (f fixture) stock(t *testing.T, id int64) string {
	t.Helper()
	r, ok := f.store.Resource(id)
	require.True(t, ok)
	return r.Stock.String()
}

func (f fixture) register(t *testing.T, resourceID, typeID, qty int64) int64 {
	t.Helper()
	id, err := f.svc.Register(context.Background(), ledgerapp.RegisterInput{
		ResourceID: resourceID,
		TypeID:     typeID,
		Quantity:   decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return id
}

// seed agrega n movimientos de entrada sin pasar por Register (no toca stock).
func (f fixture) seed(t *testing.T, resourceID int64, n int) {
	t.Helper()
	for i := range n {
		_, err := f.store.AppendMovement(context.Background(), &entity.Movement{
			ResourceID: resourceID,
			TypeID:     tipoEntrada,
			Quantity:   decimal.NewFromInt(1),
			Date:       fixedNow.Add(-time.Duration(i%4) * time.Hour),
		})
		require.NoError(t, err)
	}
}

func viewIDs(views []entity.MovementView) []int64 {
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func int64Ptr(v int64) *int64 { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestSummarize_ProductosEntradaSalidaAjuste(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)

	f.register(t, 1, tipoEntrada, 10)
	f.register(t, 1, tipoSalida, 4)
	f.register(t, 1, tipoAjuste, 1)

	stats, err := f.svc.Summarize(context.Background(), ledger.Filter{})
	require.NoError(t, err)
	assert.False(t, stats.Degraded)
	assert.Equal(t, ledger.StatsSummary{
		TotalMovements:            3,
		IncomingCount:             1,
		OutgoingCount:             1,
		DistinctAffectedResources: 1,
	}, stats.StatsSummary)
	assert.Equal(t, "6", f.stock(t, 1), "el ajuste es neutro y no toca el stock")
}

func TestSummarize_FiltroSinCoincidencias(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.putResource(2, "Vino Blanco Joven", "VB-JOV-750", 0)
	f.register(t, 1, tipoEntrada, 10)
	f.register(t, 1, tipoSalida, 4)

	filter := ledger.Filter{ResourceID: int64Ptr(2)}
	stats, err := f.svc.Summarize(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatsSummary{}, stats.StatsSummary)

	page, err := f.svc.List(context.Background(), filter, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Info.TotalPages)
	assert.Equal(t, int64(0), page.Info.Total)
}

func TestSummarize_InsumosAjusteSoloEnElTotal(t *testing.T) {
	f := newFixture(t, ledger.Supplies, testConfig())
	f.putResource(1, "Corcho natural", "", 100)

	f.register(t, 1, insumoEntrada, 5)
	f.register(t, 1, insumoAjuste, 3)
	f.register(t, 1, insumoConsumo, 2)

	stats, err := f.svc.Summarize(context.Background(), ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalMovements)
	assert.Equal(t, int64(1), stats.IncomingCount)
	assert.Equal(t, int64(1), stats.OutgoingCount)
	assert.Equal(t, "103", f.stock(t, 1))
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y paginación
// ──────────────────────────────────────────────────────────────────────────────

func TestList_PaginasParticionanElConjunto(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.seed(t, 1, 25)
	ctx := context.Background()

	var paged []int64
	for p := 1; p <= 3; p++ {
		page, err := f.svc.List(ctx, ledger.Filter{}, p, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(25), page.Info.Total)
		assert.Equal(t, 3, page.Info.TotalPages)
		paged = append(paged, viewIDs(page.Items)...)
	}

	all, err := f.store.ListMovements(ctx, ledger.Filter{}, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, viewIDs(all), paged)

	beyond, err := f.svc.List(ctx, ledger.Filter{}, 4, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(25), beyond.Info.Total, "más allá del final el total se mantiene")
	assert.Equal(t, 4, beyond.Info.Page)
}

func TestList_PaginaEnormeDevuelveVacio(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.seed(t, 1, 3)

	page, err := f.svc.List(context.Background(), ledger.Filter{}, (1<<62)+1, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(3), page.Info.Total)
	assert.Equal(t, 2, page.Info.TotalPages)
	assert.Equal(t, (1<<62)+1, page.Info.Page)
	assert.False(t, page.Degraded)
}

func TestList_LecturasRepetidasSonIdenticas(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 50)
	f.putResource(2, "Vino Blanco Joven", "VB-JOV-750", 50)
	f.register(t, 1, tipoEntrada, 10)
	f.register(t, 2, tipoSalida, 4)
	f.register(t, 1, tipoAjuste, 1)
	f.seed(t, 2, 5)
	ctx := context.Background()
	filter := ledger.Filter{Search: "vino", TypeID: int64Ptr(tipoEntrada)}

	page1, err := f.svc.List(ctx, filter, 1, 3)
	require.NoError(t, err)
	page2, err := f.svc.List(ctx, filter, 1, 3)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(page1, page2), "mismo filtro sin altas intermedias, mismo listado")

	stats1, err := f.svc.Summarize(ctx, filter)
	require.NoError(t, err)
	stats2, err := f.svc.Summarize(ctx, filter)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(stats1, stats2))

	file1, err := f.svc.Export(ctx, filter, 0)
	require.NoError(t, err)
	file2, err := f.svc.Export(ctx, filter, 0)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(file1.Body, file2.Body), "el CSV es idéntico byte a byte")
	assert.Equal(t, file1.Rows, file2.Rows)
	assert.Positive(t, file1.Rows)
}

func TestList_CorrigeValoresFueraDeRango(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.seed(t, 1, 3)
	ctx := context.Background()

	page, err := f.svc.List(ctx, ledger.Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Info.Page)
	assert.Equal(t, 10, page.Info.PageSize)
	assert.Len(t, page.Items, 3)

	page, err = f.svc.List(ctx, ledger.Filter{}, 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Info.PageSize)
}

func TestList_NormalizaBusqueda(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.putResource(2, "Vino Blanco Joven", "VB-JOV-750", 0)
	f.register(t, 1, tipoEntrada, 1)
	f.register(t, 2, tipoEntrada, 1)

	page, err := f.svc.List(context.Background(), ledger.Filter{Search: "  blanco "}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Items[0].ResourceID)
}

func TestOverview_ListadoYEstadisticasCoinciden(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 50)
	f.register(t, 1, tipoEntrada, 10)
	f.register(t, 1, tipoSalida, 4)

	ov, err := f.svc.Overview(context.Background(), ledger.Filter{}, 1, 10)
	require.NoError(t, err)
	assert.False(t, ov.Degraded)
	assert.Equal(t, ov.Page.Info.Total, ov.Stats.TotalMovements)
	assert.Len(t, ov.Page.Items, 2)
	assert.Equal(t, int64(1), ov.Stats.IncomingCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Exportación
// ──────────────────────────────────────────────────────────────────────────────

func TestExport_DosRegistrosTresLineas(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.register(t, 1, tipoEntrada, 10)
	f.register(t, 1, tipoSalida, 4)

	file, err := f.svc.Export(context.Background(), ledger.Filter{}, 0)
	require.NoError(t, err)

	lines := strings.Split(string(file.Body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 2, file.Rows)
	assert.Equal(t, "movimientos_productos_2024-03-05.csv", file.Filename)
	assert.Equal(t, ledger.CSVContentType, file.ContentType)
	assert.Equal(t, `"05/03/2024 14:30:00","Vino Tinto Reserva","VT-RES-750","Entrada",10,"N/A","Sistema","N/A"`, lines[1])
	assert.Equal(t, `"05/03/2024 14:30:00","Vino Tinto Reserva","VT-RES-750","Salida",4,"N/A","Sistema","N/A"`, lines[2])
}

func TestExport_MismasFilasQueElTotalDeEstadisticas(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.putResource(2, "Vino Blanco Joven", "VB-JOV-750", 0)
	f.seed(t, 1, 7)
	f.seed(t, 2, 4)
	ctx := context.Background()
	filter := ledger.Filter{Search: "tinto"}

	stats, err := f.svc.Summarize(ctx, filter)
	require.NoError(t, err)
	file, err := f.svc.Export(ctx, filter, 0)
	require.NoError(t, err)
	page, err := f.svc.List(ctx, filter, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.TotalMovements)
	assert.Equal(t, int(stats.TotalMovements), file.Rows)
	assert.Equal(t, stats.TotalMovements, page.Info.Total)
}

func TestExport_TopeDeFilasYPartes(t *testing.T) {
	cfg := testConfig()
	cfg.ExportMaxRows = 2
	f := newFixture(t, ledger.Products, cfg)
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.seed(t, 1, 5)
	ctx := context.Background()

	_, err := f.svc.Export(ctx, ledger.Filter{}, 0)
	var tooLarge *ledgerapp.ExportTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.ErrorIs(t, err, domain.ErrExportTooLarge)
	assert.Equal(t, int64(5), tooLarge.Total)
	assert.Equal(t, 2, tooLarge.MaxRows)
	assert.Equal(t, 3, tooLarge.Parts)

	var rows int
	for part := 1; part <= 3; part++ {
		file, err := f.svc.Export(ctx, ledger.Filter{}, part)
		require.NoError(t, err)
		rows += file.Rows
	}
	assert.Equal(t, 5, rows)

	last, err := f.svc.Export(ctx, ledger.Filter{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, last.Rows)
	assert.Equal(t, "movimientos_productos_2024-03-05_parte3.csv", last.Filename)

	_, err = f.svc.Export(ctx, ledger.Filter{}, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Export(ctx, ledger.Filter{}, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExport_ConjuntoVacioSoloEncabezado(t *testing.T) {
	f := newFixture(t, ledger.Supplies, testConfig())

	file, err := f.svc.Export(context.Background(), ledger.Filter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Fecha,Insumo,Tipo Movimiento,Cantidad,Referencia,Usuario,Notas", string(file.Body))
	assert.Equal(t, "movimientos_insumos_2024-03-05.csv", file.Filename)

	// part=1 sobre un conjunto vacío sigue siendo válido
	_, err = f.svc.Export(context.Background(), ledger.Filter{}, 1)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas degradadas
// ──────────────────────────────────────────────────────────────────────────────

func TestLecturasDegradadas_RespuestaVacia(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	f.register(t, 1, tipoEntrada, 10)
	f.store.FailReads(errors.New("conexión rechazada"))
	ctx := context.Background()

	page, err := f.svc.List(ctx, ledger.Filter{}, 2, 10)
	require.NoError(t, err)
	assert.True(t, page.Degraded)
	assert.Empty(t, page.Items)
	assert.Equal(t, ledger.PageInfo{Page: 2, PageSize: 10}, page.Info)

	stats, err := f.svc.Summarize(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.True(t, stats.Degraded)
	assert.Equal(t, ledger.StatsSummary{}, stats.StatsSummary)

	ov, err := f.svc.Overview(ctx, ledger.Filter{}, 1, 10)
	require.NoError(t, err)
	assert.True(t, ov.Degraded)
	assert.True(t, ov.Page.Degraded)
	assert.True(t, ov.Stats.Degraded)

	file, err := f.svc.Export(ctx, ledger.Filter{}, 0)
	require.NoError(t, err)
	assert.True(t, file.Degraded)
	assert.Equal(t, 0, file.Rows)
	assert.NotContains(t, string(file.Body), "\n")
}

func TestLecturasDegradadas_CancelacionSePropaga(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	boom := errors.New("conexión rechazada")
	f.store.FailReads(boom)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.List(ctx, ledger.Filter{}, 1, 10)
	assert.ErrorIs(t, err, boom)
	_, err = f.svc.Summarize(ctx, ledger.Filter{})
	assert.ErrorIs(t, err, boom)
	_, err = f.svc.Export(ctx, ledger.Filter{}, 0)
	assert.ErrorIs(t, err, boom)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_DatosDelMovimiento(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	eventDate := fixedNow.Add(-48 * time.Hour)

	id, err := f.svc.Register(context.Background(), ledgerapp.RegisterInput{
		ResourceID: 1,
		TypeID:     tipoEntrada,
		Quantity:   decimal.RequireFromString("12.5"),
		Date:       &eventDate,
		Notes:      "  recepción lote 7  ",
		Reference:  entity.PurchaseReference{OrderID: 31},
		ActorID:    "5b0e4c4e-7a43-4a4e-9d0b-2d7a4b0c1e11",
	})
	require.NoError(t, err)

	page, err := f.svc.List(context.Background(), ledger.Filter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	got := page.Items[0]
	assert.Equal(t, id, got.ID)
	assert.True(t, got.Date.Equal(eventDate))
	assert.True(t, got.CreatedAt.Equal(fixedNow))
	assert.Equal(t, "recepción lote 7", got.Notes)
	assert.Equal(t, entity.PurchaseReference{OrderID: 31}, got.Reference)
	assert.Equal(t, "12.5", f.stock(t, 1))
}

func TestRegister_StockInsuficiente(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 3)

	_, err := f.svc.Register(context.Background(), ledgerapp.RegisterInput{
		ResourceID: 1, TypeID: tipoSalida, Quantity: decimal.NewFromInt(4),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "3", f.stock(t, 1))

	total, err := f.store.CountMovements(context.Background(), ledger.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total, "un alta rechazada no deja movimiento")
}

func TestRegister_Validaciones(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 3)

	cases := []struct {
		name string
		in   ledgerapp.RegisterInput
		want error
	}{
		{"sin recurso", ledgerapp.RegisterInput{TypeID: tipoEntrada, Quantity: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"cantidad negativa", ledgerapp.RegisterInput{ResourceID: 1, TypeID: tipoEntrada, Quantity: decimal.NewFromInt(-1)}, domain.ErrNegativeQuantity},
		{"tipo inexistente", ledgerapp.RegisterInput{ResourceID: 1, TypeID: 99, Quantity: decimal.NewFromInt(1)}, domain.ErrUnknownMovementType},
		{"recurso inexistente", ledgerapp.RegisterInput{ResourceID: 404, TypeID: tipoEntrada, Quantity: decimal.NewFromInt(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegister_CantidadCeroPermitida(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 3)

	f.register(t, 1, tipoSalida, 0)
	assert.Equal(t, "3", f.stock(t, 1))
}

func TestRegister_IdempotencyKeyDuplicada(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	in := ledgerapp.RegisterInput{
		ResourceID:     1,
		TypeID:         tipoEntrada,
		Quantity:       decimal.NewFromInt(10),
		IdempotencyKey: "recepcion-31",
	}

	_, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	assert.Equal(t, "10", f.stock(t, 1))

	// otro actor con la misma clave no colisiona
	in.ActorID = "5b0e4c4e-7a43-4a4e-9d0b-2d7a4b0c1e11"
	_, err = f.svc.Register(context.Background(), in)
	assert.NoError(t, err)
}

func TestRegister_FallaLiberaIdempotencyKey(t *testing.T) {
	f := newFixture(t, ledger.Products, testConfig())
	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 0)
	in := ledgerapp.RegisterInput{
		ResourceID:     1,
		TypeID:         tipoSalida,
		Quantity:       decimal.NewFromInt(5),
		IdempotencyKey: "despacho-9",
	}

	_, err := f.svc.Register(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, f.idem.Len())

	f.putResource(1, "Vino Tinto Reserva", "VT-RES-750", 5)
	_, err = f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "0", f.stock(t, 1))
	assert.Equal(t, 1, f.idem.Len())
}

func TestMovementTypes_CatalogoDelLedger(t *testing.T) {
	f := newFixture(t, ledger.Supplies, testConfig())

	types, err := f.svc.MovementTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 5)
	assert.Equal(t, ledger.Decrease, f.svc.Polarity(types[2]), "consumo")
	assert.Equal(t, ledger.KindSupplies, f.svc.Definition().Kind)
}
