package ledger

import "math"

// PageInfo metadatos de una página del listado.
type PageInfo struct {
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// TotalPages ceil(total/pageSize); 0 cuando no hay registros o pageSize no es positivo.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// ClampPage acota la página a [1, max(totalPages,1)]. Solo para controles de navegación:
// el store nunca acota y devuelve una página vacía más allá del final.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if last := max(totalPages, 1); page > last {
		return last
	}
	return page
}

// Window offset y limit de la página (page >= 1, pageSize >= 1).
// Si (page-1)*pageSize desborda int el offset queda en math.MaxInt, más allá de cualquier fila.
func Window(page, pageSize int) (offset, limit int) {
	if page <= 1 || pageSize <= 0 {
		return 0, pageSize
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt, pageSize
	}
	return (page - 1) * pageSize, pageSize
}

// NormalizePage corrige valores fuera de rango recibidos desde la UI:
// page < 1 pasa a 1; pageSize <= 0 toma el valor por defecto y se limita a maxSize.
func NormalizePage(page, pageSize, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if maxSize > 0 && pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

// NewPageInfo arma los metadatos a partir del total filtrado.
func NewPageInfo(page, pageSize int, total int64) PageInfo {
	return PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}
