package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Products  *ledgerapp.Service
	Supplies  *ledgerapp.Service
	Validator *validator.Validate
	Location  *time.Location // zona de las fechas YYYY-MM-DD de los filtros
	Logger    *logger.Logger
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	movements := protected.Group("/movements")

	ledgers := []struct {
		path string
		svc  *ledgerapp.Service
	}{
		{"/products", deps.Products},
		{"/supplies", deps.Supplies},
	}
	for _, l := range ledgers {
		if l.svc == nil {
			continue
		}
		h := NewMovementHandler(l.svc, deps.Validator, deps.Location, deps.Logger.Component("http"))
		g := movements.Group(l.path)
		g.Get("/", h.List)
		g.Get("/types", h.Types)
		g.Get("/stats", h.Stats)
		g.Get("/overview", h.Overview)
		g.Get("/export", h.Export)
		// Alta: solo personal de bodega
		g.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), h.Register)
	}
}
