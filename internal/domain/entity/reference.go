package entity

import (
	"fmt"

	"github.com/jhoicas/bodega-api/internal/domain"
)

// ReferenceType etiqueta del evento de negocio que originó un movimiento.
type ReferenceType string

const (
	ReferenceVenta        ReferenceType = "venta"
	ReferenceCompra       ReferenceType = "compra"
	ReferenceProduccion   ReferenceType = "produccion"
	ReferencePerdida      ReferenceType = "perdida"
	ReferenceDevolucion   ReferenceType = "devolucion"
	ReferenceAjusteManual ReferenceType = "ajuste_manual"
)

// Reference es la unión etiquetada de los orígenes posibles de un movimiento.
// Cada variante lleva su propio id tipado; nil significa "sin referencia".
type Reference interface {
	Type() ReferenceType
	isReference()
}

// SaleReference movimiento generado al registrar una venta.
type SaleReference struct{ SaleID int64 }

// PurchaseReference movimiento generado por la recepción de un pedido a proveedor.
type PurchaseReference struct{ OrderID int64 }

// ProductionReference movimiento generado por una orden de producción.
type ProductionReference struct{ OrderID int64 }

// LossReference movimiento generado al registrar una pérdida.
type LossReference struct{ LossID int64 }

// ReturnReference movimiento generado por una devolución.
type ReturnReference struct{ ReturnID int64 }

// ManualAdjustmentReference ajuste manual, sin documento asociado.
type ManualAdjustmentReference struct{}

// OtherReference conserva etiquetas que este servicio no conoce todavía.
type OtherReference struct {
	Kind string
	ID   *int64
}

func (SaleReference) Type() ReferenceType             { return ReferenceVenta }
func (PurchaseReference) Type() ReferenceType         { return ReferenceCompra }
func (ProductionReference) Type() ReferenceType       { return ReferenceProduccion }
func (LossReference) Type() ReferenceType             { return ReferencePerdida }
func (ReturnReference) Type() ReferenceType           { return ReferenceDevolucion }
func (ManualAdjustmentReference) Type() ReferenceType { return ReferenceAjusteManual }
func (r OtherReference) Type() ReferenceType          { return ReferenceType(r.Kind) }

func (SaleReference) isReference()             {}
func (PurchaseReference) isReference()         {}
func (ProductionReference) isReference()       {}
func (LossReference) isReference()             {}
func (ReturnReference) isReference()           {}
func (ManualAdjustmentReference) isReference() {}
func (OtherReference) isReference()            {}

// DecodeReference reconstruye la variante a partir del par de columnas
// (reference_type, reference_id). Un tipo vacío devuelve nil.
func DecodeReference(kind string, id *int64) (Reference, error) {
	typed := func(build func(int64) Reference) (Reference, error) {
		if id == nil {
			return nil, fmt.Errorf("%w: %q requiere reference_id", domain.ErrInvalidReference, kind)
		}
		return build(*id), nil
	}
	switch ReferenceType(kind) {
	case "":
		if id != nil {
			return nil, fmt.Errorf("%w: reference_id sin reference_type", domain.ErrInvalidReference)
		}
		return nil, nil
	case ReferenceVenta:
		return typed(func(v int64) Reference { return SaleReference{SaleID: v} })
	case ReferenceCompra:
		return typed(func(v int64) Reference { return PurchaseReference{OrderID: v} })
	case ReferenceProduccion:
		return typed(func(v int64) Reference { return ProductionReference{OrderID: v} })
	case ReferencePerdida:
		return typed(func(v int64) Reference { return LossReference{LossID: v} })
	case ReferenceDevolucion:
		return typed(func(v int64) Reference { return ReturnReference{ReturnID: v} })
	case ReferenceAjusteManual:
		return ManualAdjustmentReference{}, nil
	default:
		return OtherReference{Kind: kind, ID: id}, nil
	}
}

// EncodeReference devuelve el par de columnas a persistir.
func EncodeReference(ref Reference) (kind *string, id *int64) {
	if ref == nil {
		return nil, nil
	}
	k := string(ref.Type())
	switch r := ref.(type) {
	case SaleReference:
		return &k, &r.SaleID
	case PurchaseReference:
		return &k, &r.OrderID
	case ProductionReference:
		return &k, &r.OrderID
	case LossReference:
		return &k, &r.LossID
	case ReturnReference:
		return &k, &r.ReturnID
	case OtherReference:
		return &k, r.ID
	}
	return &k, nil
}
