package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// Config parámetros de paginación, exportación e idempotencia del servicio.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	ExportMaxRows   int
	Location        *time.Location // zona de la columna Fecha y del nombre de archivo
	IdempotencyTTL  time.Duration
}

// Service casos de uso de un ledger (productos o insumos). Todas las lecturas de una
// misma llamada usan el mismo ledger.Filter.
type Service struct {
	def      ledger.Definition
	store    Store
	idem     IdempotencyStore
	exporter *ledger.CSVExporter
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el servicio. idem puede ser nil (sin soporte de Idempotency-Key).
func NewService(def ledger.Definition, store Store, idem IdempotencyStore, cfg Config, log *logger.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = 10000
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		def:      def,
		store:    store,
		idem:     idem,
		exporter: ledger.NewCSVExporter(def.Layout, cfg.Location),
		cfg:      cfg,
		log:      log.Component("ledger." + string(def.Kind)),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Definition ledger que atiende el servicio.
func (s *Service) Definition() ledger.Definition {
	return s.def
}

// Polarity polaridad de un tipo según la estrategia del ledger.
func (s *Service) Polarity(t entity.MovementType) ledger.Polarity {
	return s.def.Polarity(t)
}

// Page una página del listado.
type Page struct {
	Items    []entity.MovementView
	Info     ledger.PageInfo
	Degraded bool
}

// Stats resumen estadístico del conjunto filtrado.
type Stats struct {
	ledger.StatsSummary
	Degraded bool
}

// Overview listado y estadísticas de la misma instantánea.
type Overview struct {
	Page     Page
	Stats    Stats
	Degraded bool
}

// ExportFile archivo CSV listo para descargar.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
	Degraded    bool
}

// ExportTooLargeError el conjunto filtrado supera el tope por archivo; el cliente debe pedir partes.
type ExportTooLargeError struct {
	Total   int64
	MaxRows int
	Parts   int
}

func (e *ExportTooLargeError) Error() string {
	return fmt.Sprintf("%s: %d filas (máximo %d por archivo, %d partes)",
		domain.ErrExportTooLarge.Error(), e.Total, e.MaxRows, e.Parts)
}

func (e *ExportTooLargeError) Unwrap() error { return domain.ErrExportTooLarge }

// MovementTypes catálogo de tipos del ledger.
func (s *Service) MovementTypes(ctx context.Context) ([]entity.MovementType, error) {
	types, err := s.store.ListMovementTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tipos de movimiento: %w", err)
	}
	return types, nil
}

// List devuelve la página pedida. page < 1 y pageSize fuera de rango se corrigen;
// una página más allá del final viene vacía con el total intacto.
func (s *Service) List(ctx context.Context, filter ledger.Filter, page, pageSize int) (Page, error) {
	filter = filter.Normalize()
	page, pageSize = ledger.NormalizePage(page, pageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	var out Page
	err := s.store.Snapshot(ctx, func(r repository.MovementReader) error {
		var err error
		out, err = s.readPage(ctx, r, filter, page, pageSize)
		return err
	})
	if err != nil {
		if derr := s.degrade(ctx, "list", err); derr != nil {
			return Page{}, derr
		}
		return emptyPage(page, pageSize), nil
	}
	return out, nil
}

// Summarize estadísticas del conjunto filtrado, sin paginar. Nunca se cachean.
func (s *Service) Summarize(ctx context.Context, filter ledger.Filter) (Stats, error) {
	filter = filter.Normalize()
	types, err := s.store.ListMovementTypes(ctx)
	if err != nil {
		if derr := s.degrade(ctx, "stats", err); derr != nil {
			return Stats{}, derr
		}
		return Stats{Degraded: true}, nil
	}

	var out ledger.StatsSummary
	err = s.store.Snapshot(ctx, func(r repository.MovementReader) error {
		var err error
		out, err = s.readStats(ctx, r, filter, types)
		return err
	})
	if err != nil {
		if derr := s.degrade(ctx, "stats", err); derr != nil {
			return Stats{}, derr
		}
		return Stats{Degraded: true}, nil
	}
	return Stats{StatsSummary: out}, nil
}

// Overview listado y estadísticas en una sola instantánea: los números de la tabla y de
// las tarjetas no pueden discrepar dentro de la misma petición.
func (s *Service) Overview(ctx context.Context, filter ledger.Filter, page, pageSize int) (Overview, error) {
	filter = filter.Normalize()
	page, pageSize = ledger.NormalizePage(page, pageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	degraded := func() Overview {
		p := emptyPage(page, pageSize)
		return Overview{Page: p, Stats: Stats{Degraded: true}, Degraded: true}
	}

	types, err := s.store.ListMovementTypes(ctx)
	if err != nil {
		if derr := s.degrade(ctx, "overview", err); derr != nil {
			return Overview{}, derr
		}
		return degraded(), nil
	}

	var out Overview
	err = s.store.Snapshot(ctx, func(r repository.MovementReader) error {
		p, err := s.readPage(ctx, r, filter, page, pageSize)
		if err != nil {
			return err
		}
		st, err := s.readStats(ctx, r, filter, types)
		if err != nil {
			return err
		}
		out = Overview{Page: p, Stats: Stats{StatsSummary: st}}
		return nil
	})
	if err != nil {
		if derr := s.degrade(ctx, "overview", err); derr != nil {
			return Overview{}, derr
		}
		return degraded(), nil
	}
	return out, nil
}

// Export genera el CSV del conjunto filtrado en el mismo orden que List.
// part = 0 exporta todo si cabe en ExportMaxRows; part = N exporta el N-ésimo bloque.
func (s *Service) Export(ctx context.Context, filter ledger.Filter, part int) (*ExportFile, error) {
	if part < 0 {
		return nil, fmt.Errorf("%w: part debe ser mayor o igual a 1", domain.ErrInvalidInput)
	}
	filter = filter.Normalize()
	maxRows := s.cfg.ExportMaxRows

	var views []entity.MovementView
	err := s.store.Snapshot(ctx, func(r repository.MovementReader) error {
		total, err := r.CountMovements(ctx, filter)
		if err != nil {
			return err
		}
		parts := ledger.TotalPages(total, maxRows)
		offset := 0
		switch {
		case part == 0 && total > int64(maxRows):
			return &ExportTooLargeError{Total: total, MaxRows: maxRows, Parts: parts}
		case part > max(parts, 1):
			return fmt.Errorf("%w: part %d fuera de rango (hay %d)", domain.ErrInvalidInput, part, max(parts, 1))
		case part > 0:
			offset, _ = ledger.Window(part, maxRows)
		}
		views, err = r.ListMovements(ctx, filter, maxRows, offset)
		return err
	})

	file := &ExportFile{
		Filename:    s.exportFileName(part),
		ContentType: ledger.CSVContentType,
	}
	if err != nil {
		if errors.Is(err, domain.ErrExportTooLarge) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		if derr := s.degrade(ctx, "export", err); derr != nil {
			return nil, derr
		}
		file.Body = s.exporter.Render(nil)
		file.Degraded = true
		return file, nil
	}

	file.Body = s.exporter.Render(views)
	file.Rows = len(views)
	return file, nil
}

func (s *Service) exportFileName(part int) string {
	name := ledger.FileName(s.def.Name, s.now().In(s.cfg.Location))
	if part > 0 {
		name = fmt.Sprintf("%s_parte%d.csv", strings.TrimSuffix(name, ".csv"), part)
	}
	return name
}

// RegisterInput alta de un movimiento. ActorID vacío = movimiento del sistema.
type RegisterInput struct {
	ResourceID     int64
	TypeID         int64
	Quantity       decimal.Decimal
	Date           *time.Time // nil = ahora
	Notes          string
	Reference      entity.Reference
	ActorID        string
	IdempotencyKey string
}

// Register agrega el movimiento y actualiza el stock del recurso en una sola transacción.
// El recurso se bloquea (SELECT FOR UPDATE) para serializar altas concurrentes;
// los tipos neutros no tocan el stock.
func (s *Service) Register(ctx context.Context, in RegisterInput) (id int64, err error) {
	if in.ResourceID <= 0 || in.TypeID <= 0 {
		return 0, fmt.Errorf("%w: resource_id y type_id son obligatorios", domain.ErrInvalidInput)
	}
	if in.Quantity.IsNegative() {
		return 0, domain.ErrNegativeQuantity
	}

	types, err := s.store.ListMovementTypes(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar tipos de movimiento: %w", err)
	}
	mt, found := findType(types, in.TypeID)
	if !found {
		return 0, fmt.Errorf("%w: id %d", domain.ErrUnknownMovementType, in.TypeID)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		key := s.idempotencyKey(in.ActorID, in.IdempotencyKey)
		reserved, ierr := s.idem.Reserve(ctx, key, s.cfg.IdempotencyTTL)
		if ierr != nil {
			return 0, fmt.Errorf("reservar idempotency key: %w", ierr)
		}
		if !reserved {
			return 0, domain.ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if rerr := s.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				s.log.Warn().Err(rerr).Str("key", key).Msg("no se pudo liberar la idempotency key")
			}
		}()
	}

	now := s.now()
	movement := &entity.Movement{
		ResourceID: in.ResourceID,
		TypeID:     in.TypeID,
		Quantity:   in.Quantity,
		Date:       now,
		CreatedAt:  now,
		ActorID:    in.ActorID,
		Notes:      strings.TrimSpace(in.Notes),
		Reference:  in.Reference,
	}
	if in.Date != nil {
		movement.Date = *in.Date
	}
	effect := ledger.SignedEffect(s.def.Polarity(mt), in.Quantity)

	err = s.store.Run(ctx, func(movRepo repository.MovementWriter, resourceRepo repository.ResourceRepository) error {
		resource, err := resourceRepo.GetForUpdate(ctx, in.ResourceID)
		if err != nil {
			return err
		}
		if resource == nil {
			return fmt.Errorf("%w: recurso %d", domain.ErrNotFound, in.ResourceID)
		}
		if !effect.IsZero() {
			next := resource.Stock.Add(effect)
			if next.IsNegative() {
				return fmt.Errorf("%w: disponible %s, requerido %s",
					domain.ErrInsufficientStock, resource.Stock.String(), in.Quantity.String())
			}
			resource.Stock = next
			if err := resourceRepo.UpdateStock(ctx, resource); err != nil {
				return err
			}
		}
		newID, err := movRepo.AppendMovement(ctx, movement)
		if err != nil {
			return err
		}
		movement.ID = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Int64("movement_id", movement.ID).
		Int64("resource_id", movement.ResourceID).
		Str("type", mt.Key).
		Str("quantity", movement.Quantity.String()).
		Str("effect", effect.String()).
		Msg("movimiento registrado")
	return movement.ID, nil
}

func (s *Service) idempotencyKey(actorID, key string) string {
	if actorID == "" {
		actorID = "sistema"
	}
	return fmt.Sprintf("ledger:%s:%s:%s", s.def.Kind, actorID, key)
}

func (s *Service) readPage(ctx context.Context, r repository.MovementReader, filter ledger.Filter, page, pageSize int) (Page, error) {
	total, err := r.CountMovements(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	info := ledger.NewPageInfo(page, pageSize, total)
	// más allá de la última página no hay filas: no se consulta
	if page > info.TotalPages {
		return Page{Items: []entity.MovementView{}, Info: info}, nil
	}
	offset, limit := ledger.Window(page, pageSize)
	items, err := r.ListMovements(ctx, filter, limit, offset)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []entity.MovementView{}
	}
	return Page{Items: items, Info: info}, nil
}

func (s *Service) readStats(ctx context.Context, r repository.MovementReader, filter ledger.Filter, types []entity.MovementType) (ledger.StatsSummary, error) {
	counts, err := r.CountByType(ctx, filter)
	if err != nil {
		return ledger.StatsSummary{}, err
	}
	distinct, err := r.CountDistinctResources(ctx, filter)
	if err != nil {
		return ledger.StatsSummary{}, err
	}
	return ledger.Summarize(counts, distinct, types, s.def.Polarity), nil
}

// degrade registra la falla de lectura y devuelve nil si la respuesta puede degradarse;
// si el cliente canceló la petición el error se propaga.
func (s *Service) degrade(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	s.log.Warn().Err(err).Str("op", op).Msg("consulta del ledger falló; respuesta vacía")
	return nil
}

func emptyPage(page, pageSize int) Page {
	return Page{
		Items:    []entity.MovementView{},
		Info:     ledger.NewPageInfo(page, pageSize, 0),
		Degraded: true,
	}
}

func findType(types []entity.MovementType, id int64) (entity.MovementType, bool) {
	for _, t := range types {
		if t.ID == id {
			return t, true
		}
	}
	return entity.MovementType{}, false
}
