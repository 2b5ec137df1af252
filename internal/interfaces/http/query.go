package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
)

// parseFilter arma el ledger.Filter de la petición. Se llama una sola vez por petición
// y el mismo valor va a listado, estadísticas y exportación.
//
// Fechas: YYYY-MM-DD (en loc) o RFC 3339. Un dateTo sin hora cubre el día completo.
func parseFilter(c *fiber.Ctx, loc *time.Location) (ledger.Filter, error) {
	var (
		f   ledger.Filter
		err error
	)
	f.Search = c.Query("search")
	if f.ResourceID, err = queryInt64(c, "resourceId"); err != nil {
		return f, err
	}
	if f.TypeID, err = queryInt64(c, "typeId"); err != nil {
		return f, err
	}
	if v := strings.TrimSpace(c.Query("referenceType")); v != "" {
		f.ReferenceType = &v
	}
	if v := strings.TrimSpace(c.Query("actorId")); v != "" {
		id, perr := uuid.Parse(v)
		if perr != nil {
			return f, fmt.Errorf("%w: actorId debe ser un UUID", domain.ErrInvalidInput)
		}
		s := id.String()
		f.ActorID = &s
	}
	if f.DateFrom, err = queryDate(c, "dateFrom", loc, false); err != nil {
		return f, err
	}
	if f.DateTo, err = queryDate(c, "dateTo", loc, true); err != nil {
		return f, err
	}
	return f.Normalize(), nil
}

// parsePage page y pageSize; ausentes = 0 (el servicio aplica los valores por defecto).
func parsePage(c *fiber.Ctx) (page, pageSize int, err error) {
	if page, err = queryInt(c, "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = queryInt(c, "pageSize"); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s debe ser numérico", domain.ErrInvalidInput, key)
	}
	return n, nil
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser numérico", domain.ErrInvalidInput, key)
	}
	return &n, nil
}

func queryDate(c *fiber.Ctx, key string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser YYYY-MM-DD o RFC 3339", domain.ErrInvalidInput, key)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
