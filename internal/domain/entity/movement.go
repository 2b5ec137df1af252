package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement es una entrada inmutable del ledger de movimientos (productos o insumos).
// La dirección no va en el signo de Quantity: la define la polaridad del tipo.
type Movement struct {
	ID         int64
	ResourceID int64 // producto o insumo
	TypeID     int64
	Quantity   decimal.Decimal // magnitud, siempre >= 0
	Date       time.Time       // momento del evento
	CreatedAt  time.Time       // momento de ingesta
	ActorID    string          // vacío = movimiento del sistema
	Notes      string
	Reference  Reference // nil = sin referencia
}

// MovementView movimiento desnormalizado tal como se lista y exporta.
// Resource y Actor son nil cuando la fila referenciada ya no existe (o no aplica).
type MovementView struct {
	Movement
	Type     MovementType
	Resource *Resource
	Actor    *User
}

// ReferenceType devuelve la etiqueta de la referencia o "" si no tiene.
func (v MovementView) ReferenceType() string {
	if v.Reference == nil {
		return ""
	}
	return string(v.Reference.Type())
}
