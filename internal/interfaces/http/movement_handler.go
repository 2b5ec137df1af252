package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderDegraded       = "X-Ledger-Degraded"
	HeaderExportRows     = "X-Ledger-Rows"
)

// MovementHandler endpoints de un ledger de movimientos (productos o insumos).
type MovementHandler struct {
	svc      *ledgerapp.Service
	validate *validator.Validate
	loc      *time.Location
	log      *logger.Logger
}

// NewMovementHandler construye el handler. loc interpreta las fechas sin zona de los filtros.
func NewMovementHandler(svc *ledgerapp.Service, validate *validator.Validate, loc *time.Location, log *logger.Logger) *MovementHandler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MovementHandler{svc: svc, validate: validate, loc: loc, log: log}
}

// Types godoc
// @Summary      Tipos de movimiento del ledger
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        ledger  path  string  true  "products | supplies"
// @Success      200  {array}   dto.MovementTypeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/movements/{ledger}/types [get]
func (h *MovementHandler) Types(c *fiber.Ctx) error {
	types, err := h.svc.MovementTypes(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.MovementTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, dto.MovementTypeResponse{
			ID:             t.ID,
			Key:            t.Key,
			Name:           t.Name,
			IncreasesStock: t.IncreasesStock,
			Polarity:       h.svc.Polarity(t).String(),
		})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Description  Orden: fecha descendente, id ascendente. Una página más allá del final viene vacía.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        ledger         path   string  true   "products | supplies"
// @Param        search         query  string  false  "Texto en nombre, SKU o notas"
// @Param        resourceId     query  int     false  "Producto o insumo"
// @Param        typeId         query  int     false  "Tipo de movimiento"
// @Param        referenceType  query  string  false  "venta, compra, produccion..."
// @Param        actorId        query  string  false  "Usuario (UUID)"
// @Param        dateFrom       query  string  false  "YYYY-MM-DD o RFC 3339"
// @Param        dateTo         query  string  false  "YYYY-MM-DD o RFC 3339 (inclusive)"
// @Param        page           query  int     false  "Página (desde 1)"
// @Param        pageSize       query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/{ledger} [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, pageSize, err := parsePage(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	result, err := h.svc.List(c.UserContext(), filter, page, pageSize)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items:    h.toMovementResponses(result.Items),
		Page:     toPageResponse(result.Info),
		Degraded: result.Degraded,
	})
}

// Stats godoc
// @Summary      Estadísticas del conjunto filtrado
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        ledger  path  string  true  "products | supplies"
// @Success      200  {object}  dto.MovementStatsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/{ledger}/stats [get]
func (h *MovementHandler) Stats(c *fiber.Ctx) error {
	filter, err := parseFilter(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	stats, err := h.svc.Summarize(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStatsResponse(stats))
}

// Overview godoc
// @Summary      Listado y estadísticas en una sola lectura consistente
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        ledger  path  string  true  "products | supplies"
// @Success      200  {object}  dto.MovementOverviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/{ledger}/overview [get]
func (h *MovementHandler) Overview(c *fiber.Ctx) error {
	filter, err := parseFilter(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, pageSize, err := parsePage(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ov, err := h.svc.Overview(c.UserContext(), filter, page, pageSize)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementOverviewResponse{
		Items:    h.toMovementResponses(ov.Page.Items),
		Page:     toPageResponse(ov.Page.Info),
		Stats:    toStatsResponse(ov.Stats),
		Degraded: ov.Degraded,
	})
}

// Export godoc
// @Summary      Exportar movimientos a CSV
// @Description  Si el conjunto supera el máximo por archivo responde 413 con la cantidad de partes; pedir ?part=1..N.
// @Tags         movements
// @Security     Bearer
// @Produce      text/csv
// @Param        ledger  path   string  true   "products | supplies"
// @Param        part    query  int     false  "Parte a exportar (desde 1)"
// @Success      200  {string}  string  "archivo CSV"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ExportTooLargeResponse
// @Router       /api/movements/{ledger}/export [get]
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	filter, err := parseFilter(c, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	part, err := queryInt(c, "part")
	if err != nil {
		return writeError(c, h.log, err)
	}
	file, err := h.svc.Export(c.UserContext(), filter, part)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Set(HeaderExportRows, strconv.Itoa(file.Rows))
	if file.Degraded {
		c.Set(HeaderDegraded, "true")
	}
	return c.Send(file.Body)
}

// Register godoc
// @Summary      Registrar movimiento
// @Description  Agrega el movimiento y ajusta el stock del recurso en la misma transacción.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ledger           path    string                       true   "products | supplies"
// @Param        Idempotency-Key  header  string                       false  "Clave para evitar altas duplicadas"
// @Param        body             body    dto.RegisterMovementRequest  true   "resource_id, type_id, quantity, date, notes, reference_type, reference_id"
// @Success      201  {object}  dto.RegisterMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{ledger} [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "datos inválidos",
			Details: validationDetails(err),
		})
	}
	ref, err := entity.DecodeReference(in.ReferenceType, in.ReferenceID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := h.svc.Register(c.UserContext(), ledgerapp.RegisterInput{
		ResourceID:     in.ResourceID,
		TypeID:         in.TypeID,
		Quantity:       in.Quantity,
		Date:           in.Date,
		Notes:          in.Notes,
		Reference:      ref,
		ActorID:        GetUserID(c),
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterMovementResponse{ID: id, Message: "movimiento registrado"})
}

func (h *MovementHandler) toMovementResponses(views []entity.MovementView) []dto.MovementResponse {
	missing := h.svc.Definition().Layout.MissingResource
	out := make([]dto.MovementResponse, 0, len(views))
	for _, v := range views {
		polarity := h.svc.Polarity(v.Type)
		r := dto.MovementResponse{
			ID:             v.ID,
			ResourceID:     v.ResourceID,
			ResourceName:   missing,
			TypeID:         v.TypeID,
			TypeKey:        v.Type.Key,
			TypeName:       v.Type.Name,
			Polarity:       polarity.String(),
			Quantity:       v.Quantity,
			SignedQuantity: ledger.SignedEffect(polarity, v.Quantity),
			Date:           v.Date,
			CreatedAt:      v.CreatedAt,
			ActorID:        v.ActorID,
			ActorName:      "Sistema",
			Notes:          v.Notes,
			ReferenceType:  v.ReferenceType(),
		}
		if _, id := entity.EncodeReference(v.Reference); id != nil {
			r.ReferenceID = id
		}
		if v.Resource != nil {
			stock := v.Resource.Stock
			r.ResourceExists = true
			r.ResourceName = v.Resource.Name
			r.ResourceSKU = v.Resource.SKU
			r.ResourceStock = &stock
		}
		if v.Actor != nil {
			if name := v.Actor.DisplayName(); name != "" {
				r.ActorName = name
			}
		}
		out = append(out, r)
	}
	return out
}

func toPageResponse(info ledger.PageInfo) dto.PageResponse {
	p := dto.PageResponse{
		Page:       info.Page,
		PageSize:   info.PageSize,
		Total:      info.Total,
		TotalPages: info.TotalPages,
	}
	if info.Page > 1 {
		prev := ledger.ClampPage(info.Page-1, info.TotalPages)
		p.PrevPage = &prev
	}
	if info.Page < info.TotalPages {
		next := info.Page + 1
		p.NextPage = &next
	}
	return p
}

func toStatsResponse(s ledgerapp.Stats) dto.MovementStatsResponse {
	return dto.MovementStatsResponse{
		TotalMovements:            s.TotalMovements,
		IncomingCount:             s.IncomingCount,
		OutgoingCount:             s.OutgoingCount,
		DistinctAffectedResources: s.DistinctAffectedResources,
		Degraded:                  s.Degraded,
	}
}
