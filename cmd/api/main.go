package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
	"github.com/jhoicas/bodega-api/internal/infrastructure/cache"
	"github.com/jhoicas/bodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/bodega-api/internal/interfaces/http"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ledger_store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var productStore, supplyStore ledgerapp.Store
	switch cfg.Ledger.Store {
	case config.StoreMemory:
		products := memory.NewStore(memory.ProductTypes())
		memory.SeedDemoProducts(products)
		supplies := memory.NewStore(memory.SupplyTypes())
		memory.SeedDemoSupplies(supplies)
		productStore, supplyStore = products, supplies
		log.Warn().Msg("ledger en memoria: los movimientos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		productStore = postgres.NewLedgerStore(pool, postgres.SchemaFor(ledger.KindProducts))
		supplyStore = postgres.NewLedgerStore(pool, postgres.SchemaFor(ledger.KindSupplies))
	}

	// Idempotency-Key: Redis si está configurado (varias instancias), memoria si no.
	var idem ledgerapp.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() { _ = client.Close() }()
		idem = cache.NewRedisIdempotencyStore(client, "")
	}

	loc := cfg.Ledger.Location()
	svcCfg := ledgerapp.Config{
		DefaultPageSize: cfg.Ledger.DefaultPageSize,
		MaxPageSize:     cfg.Ledger.MaxPageSize,
		ExportMaxRows:   cfg.Ledger.ExportMaxRows,
		Location:        loc,
		IdempotencyTTL:  cfg.Ledger.IdempotencyTTL,
	}
	productsSvc := ledgerapp.NewService(ledger.Products, productStore, idem, svcCfg, log)
	suppliesSvc := ledgerapp.NewService(ledger.Supplies, supplyStore, idem, svcCfg, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.AccessLog(log.Component("access")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Bodega API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "ledger_store": cfg.Ledger.Store})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Products:  productsSvc,
		Supplies:  suppliesSvc,
		Validator: httpRouter.NewValidator(),
		Location:  loc,
		Logger:    log,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
