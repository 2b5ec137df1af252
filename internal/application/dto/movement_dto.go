package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements/{ledger}.
type RegisterMovementRequest struct {
	ResourceID    int64           `json:"resource_id" validate:"required,gt=0"`
	TypeID        int64           `json:"type_id" validate:"required,gt=0"`
	Quantity      decimal.Decimal `json:"quantity"`
	Date          *time.Time      `json:"date,omitempty"`
	Notes         string          `json:"notes" validate:"max=500"`
	ReferenceType string          `json:"reference_type,omitempty" validate:"omitempty,max=50"`
	ReferenceID   *int64          `json:"reference_id,omitempty" validate:"omitempty,gt=0"`
}

// RegisterMovementResponse id asignado al movimiento.
type RegisterMovementResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// MovementTypeResponse tipo de movimiento con su polaridad efectiva en el ledger.
type MovementTypeResponse struct {
	ID             int64  `json:"id"`
	Key            string `json:"key"`
	Name           string `json:"name"`
	IncreasesStock *bool  `json:"increases_stock"`
	Polarity       string `json:"polarity"` // increase | decrease | neutral
}

// MovementResponse fila del listado de movimientos.
type MovementResponse struct {
	ID             int64            `json:"id"`
	ResourceID     int64            `json:"resource_id"`
	ResourceName   string           `json:"resource_name"`
	ResourceSKU    string           `json:"resource_sku,omitempty"`
	ResourceStock  *decimal.Decimal `json:"resource_stock,omitempty"`
	ResourceExists bool             `json:"resource_exists"`
	TypeID         int64            `json:"type_id"`
	TypeKey        string           `json:"type_key"`
	TypeName       string           `json:"type_name"`
	Polarity       string           `json:"polarity"`
	Quantity       decimal.Decimal  `json:"quantity"`
	SignedQuantity decimal.Decimal  `json:"signed_quantity"`
	Date           time.Time        `json:"date"`
	CreatedAt      time.Time        `json:"created_at"`
	ActorID        string           `json:"actor_id,omitempty"`
	ActorName      string           `json:"actor_name"`
	Notes          string           `json:"notes,omitempty"`
	ReferenceType  string           `json:"reference_type,omitempty"`
	ReferenceID    *int64           `json:"reference_id,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
// Degraded = la consulta falló y la respuesta vacía no significa "sin datos".
type MovementListResponse struct {
	Items    []MovementResponse `json:"items"`
	Page     PageResponse       `json:"page"`
	Degraded bool               `json:"degraded"`
}

// MovementStatsResponse tarjetas de estadísticas sobre el conjunto filtrado.
type MovementStatsResponse struct {
	TotalMovements            int64 `json:"total_movements"`
	IncomingCount             int64 `json:"incoming_count"`
	OutgoingCount             int64 `json:"outgoing_count"`
	DistinctAffectedResources int64 `json:"distinct_affected_resources"`
	Degraded                  bool  `json:"degraded"`
}

// MovementOverviewResponse listado y estadísticas leídos de la misma instantánea.
type MovementOverviewResponse struct {
	Items    []MovementResponse    `json:"items"`
	Page     PageResponse          `json:"page"`
	Stats    MovementStatsResponse `json:"stats"`
	Degraded bool                  `json:"degraded"`
}

// ExportTooLargeResponse 413: el conjunto filtrado debe exportarse por partes (?part=1..parts).
type ExportTooLargeResponse struct {
	ErrorResponse
	Total   int64 `json:"total"`
	MaxRows int   `json:"max_rows"`
	Parts   int   `json:"parts"`
}
