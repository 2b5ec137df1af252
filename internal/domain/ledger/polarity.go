// Package ledger contiene las reglas puras del ledger de movimientos de inventario:
// polaridad de los tipos, filtro, estadísticas, paginación y exportación CSV.
// No depende de infraestructura; los adaptadores de persistencia traducen Filter a su propio lenguaje.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// Polarity efecto de un tipo de movimiento sobre el stock.
type Polarity int

const (
	Neutral Polarity = iota
	Increase
	Decrease
)

// String nombre estable usado en JSON.
func (p Polarity) String() string {
	switch p {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "neutral"
	}
}

// PolarityFunc estrategia de clasificación propia de cada ledger.
type PolarityFunc func(entity.MovementType) Polarity

// StoredPolarity usa el atributo increases_stock persistido (ledger de productos).
// Un valor nulo se trata como neutro.
func StoredPolarity(t entity.MovementType) Polarity {
	if t.IncreasesStock == nil {
		return Neutral
	}
	if *t.IncreasesStock {
		return Increase
	}
	return Decrease
}

// KeyPolarity deriva la polaridad de la clave (ledger de insumos):
// "entrada" suma; "salida" y "consumo" restan; el resto (p. ej. "ajuste") es neutro.
func KeyPolarity(t entity.MovementType) Polarity {
	switch t.Key {
	case entity.MovementKeyEntrada:
		return Increase
	case entity.MovementKeySalida, entity.MovementKeyConsumo:
		return Decrease
	default:
		return Neutral
	}
}

// SignedEffect efecto de un movimiento sobre el stock del recurso: +q, -q o 0 si es neutro.
func SignedEffect(p Polarity, quantity decimal.Decimal) decimal.Decimal {
	switch p {
	case Increase:
		return quantity
	case Decrease:
		return quantity.Neg()
	default:
		return decimal.Zero
	}
}
