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

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-kardex/internal/interfaces/http"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
	"github.com/jhoicas/Inventario-kardex/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool, postgres.TxOptions{
		LockTimeout: cfg.Inventory.LockTimeout,
		MaxRetries:  cfg.Inventory.MaxTxRetries,
	}, log.Component("tx"))

	idem, closeIdem := openIdempotency(ctx, cfg.Redis, log.Component("redis"))
	defer closeIdem()

	deps := httpRouter.RouterDeps{
		Sales:         inventory.NewSaleUseCase(txRunner, log.Component("ventas")),
		Purchases:     inventory.NewPurchaseUseCase(txRunner, log.Component("compras")),
		Adjustments:   inventory.NewAdjustmentUseCase(txRunner, log.Component("ajustes")),
		Production:    inventory.NewProductionUseCase(txRunner, log.Component("produccion")),
		Transfers:     inventory.NewTransferUseCase(txRunner, log.Component("traslados")),
		Counts:        inventory.NewCountUseCase(txRunner, log.Component("conteos")),
		Query:         inventory.NewMovementQueryUseCase(txRunner),
		Replenishment: inventory.NewReplenishmentUseCase(txRunner),
		Idempotency:   idem,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		Log:           log.Component("http"),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en /docs cuando existe el JSON generado con swag init.
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Kardex API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, deps)

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
