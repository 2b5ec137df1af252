package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// CSVContentType tipo MIME de la descarga.
const CSVContentType = "text/csv;charset=utf-8"

const (
	placeholderNA     = "N/A"
	placeholderSystem = "Sistema"
	csvDateLayout     = "02/01/2006 15:04:05"
)

// Layout columnas del CSV de un ledger. El encabezado es un contrato con las
// planillas que consumen el archivo: no se reordena ni se renombra.
type Layout struct {
	Header          []string
	IncludeSKU      bool
	MissingResource string // texto cuando el recurso ya no existe
}

var (
	ProductLayout = Layout{
		Header:          []string{"Fecha", "Producto", "SKU", "Tipo Movimiento", "Cantidad", "Referencia", "Usuario", "Notas"},
		IncludeSKU:      true,
		MissingResource: "Producto eliminado",
	}
	SupplyLayout = Layout{
		Header:          []string{"Fecha", "Insumo", "Tipo Movimiento", "Cantidad", "Referencia", "Usuario", "Notas"},
		MissingResource: "Insumo eliminado",
	}
)

// CSVExporter aplana movimientos a texto CSV. Todos los campos van entre comillas
// salvo la cantidad; el resultado es estable para una misma entrada.
type CSVExporter struct {
	layout Layout
	loc    *time.Location
}

// NewCSVExporter construye el exportador; loc define la zona de la columna Fecha (nil = UTC).
func NewCSVExporter(layout Layout, loc *time.Location) *CSVExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVExporter{layout: layout, loc: loc}
}

// Render devuelve encabezado + una fila por movimiento, separadas por "\n" (sin salto final).
func (e *CSVExporter) Render(views []entity.MovementView) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(e.layout.Header, ","))
	for _, v := range views {
		b.WriteByte('\n')
		e.writeRow(&b, v)
	}
	return []byte(b.String())
}

func (e *CSVExporter) writeRow(b *strings.Builder, v entity.MovementView) {
	resourceName := e.layout.MissingResource
	sku := placeholderNA
	if v.Resource != nil {
		resourceName = v.Resource.Name
		if v.Resource.SKU != "" {
			sku = v.Resource.SKU
		}
	}
	actor := placeholderSystem
	if v.Actor != nil {
		if name := v.Actor.DisplayName(); name != "" {
			actor = name
		}
	}

	fields := []string{
		quote(v.Date.In(e.loc).Format(csvDateLayout)),
		quote(resourceName),
	}
	if e.layout.IncludeSKU {
		fields = append(fields, quote(sku))
	}
	fields = append(fields,
		quote(orNA(v.Type.Name)),
		v.Quantity.String(),
		quote(orNA(v.ReferenceType())),
		quote(actor),
		quote(orNA(v.Notes)),
	)
	b.WriteString(strings.Join(fields, ","))
}

// FileName "<ledger>_<YYYY-MM-DD>.csv".
func FileName(ledgerName string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", ledgerName, now.Format(time.DateOnly))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orNA(s string) string {
	if s == "" {
		return placeholderNA
	}
	return s
}
