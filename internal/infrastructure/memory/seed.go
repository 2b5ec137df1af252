package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// ProductTypes catálogo de tipos de productos; mismo contenido que la migración 000002.
func ProductTypes() []entity.MovementType {
	yes, no := true, false
	return []entity.MovementType{
		{ID: 1, Key: entity.MovementKeyEntrada, Name: "Entrada", IncreasesStock: &yes},
		{ID: 2, Key: entity.MovementKeySalida, Name: "Salida", IncreasesStock: &no},
		{ID: 3, Key: entity.MovementKeyAjuste, Name: "Ajuste"},
		{ID: 4, Key: entity.MovementKeyPerdida, Name: "Pérdida", IncreasesStock: &no},
		{ID: 5, Key: entity.MovementKeyDevolucion, Name: "Devolución", IncreasesStock: &yes},
		{ID: 6, Key: entity.MovementKeyVenta, Name: "Venta", IncreasesStock: &no},
		{ID: 7, Key: entity.MovementKeyProduccion, Name: "Producción", IncreasesStock: &yes},
	}
}

// SupplyTypes catálogo de tipos de insumos; la polaridad sale de la clave.
func SupplyTypes() []entity.MovementType {
	return []entity.MovementType{
		{ID: 1, Key: entity.MovementKeyEntrada, Name: "Entrada"},
		{ID: 2, Key: entity.MovementKeySalida, Name: "Salida"},
		{ID: 3, Key: entity.MovementKeyConsumo, Name: "Consumo"},
		{ID: 4, Key: entity.MovementKeyAjuste, Name: "Ajuste"},
		{ID: 5, Key: entity.MovementKeyDevolucion, Name: "Devolución"},
	}
}

// SeedDemoProducts catálogo mínimo para levantar el driver en memoria en desarrollo.
func SeedDemoProducts(s *Store) {
	now := time.Now()
	s.PutResource(entity.Resource{ID: 1, Name: "Vino Tinto Reserva 750ml", SKU: "VT-RES-750", Stock: decimal.NewFromInt(120), UpdatedAt: now})
	s.PutResource(entity.Resource{ID: 2, Name: "Vino Blanco Joven 750ml", SKU: "VB-JOV-750", Stock: decimal.NewFromInt(80), UpdatedAt: now})
	s.PutResource(entity.Resource{ID: 3, Name: "Rosado Cosecha 375ml", SKU: "RO-COS-375", Stock: decimal.NewFromInt(45), UpdatedAt: now})
}

// SeedDemoSupplies insumos de ejemplo (botellas, corchos, etiquetas).
func SeedDemoSupplies(s *Store) {
	now := time.Now()
	s.PutResource(entity.Resource{ID: 1, Name: "Botella 750ml", Stock: decimal.NewFromInt(2000), UpdatedAt: now})
	s.PutResource(entity.Resource{ID: 2, Name: "Corcho natural", Stock: decimal.NewFromInt(3500), UpdatedAt: now})
	s.PutResource(entity.Resource{ID: 3, Name: "Etiqueta frontal", Stock: decimal.NewFromInt(1500), UpdatedAt: now})
}
