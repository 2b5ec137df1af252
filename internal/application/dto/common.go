package dto

// PageResponse metadatos de página en respuestas.
// Page es la página pedida (el store no la acota); PrevPage/NextPage ya vienen acotadas
// para los controles de navegación.
type PageResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	PrevPage   *int  `json:"prev_page,omitempty"`
	NextPage   *int  `json:"next_page,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail detalle por campo (validación).
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
