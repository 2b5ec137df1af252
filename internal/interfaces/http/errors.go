package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// errorMapping sentinel de dominio -> status y código de la respuesta.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNegativeQuantity, fiber.StatusBadRequest, "NEGATIVE_QUANTITY"},
	{domain.ErrUnknownMovementType, fiber.StatusBadRequest, "UNKNOWN_MOVEMENT_TYPE"},
	{domain.ErrInvalidReference, fiber.StatusBadRequest, "INVALID_REFERENCE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError responde el error con su status; los no mapeados son 500 sin detalle interno.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var tooLarge *ledgerapp.ExportTooLargeError
	if errors.As(err, &tooLarge) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ExportTooLargeResponse{
			ErrorResponse: dto.ErrorResponse{Code: "EXPORT_TOO_LARGE", Message: err.Error()},
			Total:         tooLarge.Total,
			MaxRows:       tooLarge.MaxRows,
			Parts:         tooLarge.Parts,
		})
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).
		Str("request_id", GetRequestID(c)).
		Str("path", c.Path()).
		Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
