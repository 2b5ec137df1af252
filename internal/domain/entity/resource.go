package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resource producto terminado o insumo, visto desde el ledger (solo lectura salvo el stock).
// SKU solo existe para productos.
type Resource struct {
	ID        int64
	Name      string
	SKU       string
	Stock     decimal.Decimal
	UpdatedAt time.Time
}
