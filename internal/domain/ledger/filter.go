package ledger

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// Filter criterio de consulta del ledger. Un campo nil (o Search vacío) no restringe.
// Todos los campos se combinan con AND; las fechas son límites inclusivos sobre Movement.Date.
//
// El mismo valor debe usarse para el listado, las estadísticas y la exportación
// de una misma petición.
type Filter struct {
	Search        string
	ResourceID    *int64
	TypeID        *int64
	ReferenceType *string
	ActorID       *string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// Normalize recorta la búsqueda y descarta campos de texto vacíos.
func (f Filter) Normalize() Filter {
	f.Search = strings.TrimSpace(f.Search)
	if f.ReferenceType != nil && strings.TrimSpace(*f.ReferenceType) == "" {
		f.ReferenceType = nil
	}
	if f.ActorID != nil && strings.TrimSpace(*f.ActorID) == "" {
		f.ActorID = nil
	}
	return f
}

// Matches indica si el movimiento cumple todos los criterios especificados.
func (f Filter) Matches(v entity.MovementView) bool {
	if f.ResourceID != nil && v.ResourceID != *f.ResourceID {
		return false
	}
	if f.TypeID != nil && v.TypeID != *f.TypeID {
		return false
	}
	if f.ReferenceType != nil && v.ReferenceType() != *f.ReferenceType {
		return false
	}
	if f.ActorID != nil && v.ActorID != *f.ActorID {
		return false
	}
	if f.DateFrom != nil && v.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && v.Date.After(*f.DateTo) {
		return false
	}
	if f.Search != "" && !matchesSearch(f.Search, v) {
		return false
	}
	return true
}

// matchesSearch contención sin distinguir mayúsculas sobre nombre, SKU y notas.
func matchesSearch(search string, v entity.MovementView) bool {
	fold := cases.Fold()
	needle := fold.String(search)
	fields := []string{v.Notes}
	if v.Resource != nil {
		fields = append(fields, v.Resource.Name, v.Resource.SKU)
	}
	for _, s := range fields {
		if s != "" && strings.Contains(fold.String(s), needle) {
			return true
		}
	}
	return false
}
