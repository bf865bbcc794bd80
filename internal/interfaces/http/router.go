package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/cache"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sales         *inventory.SaleUseCase
	Purchases     *inventory.PurchaseUseCase
	Adjustments   *inventory.AdjustmentUseCase
	Production    *inventory.ProductionUseCase
	Transfers     *inventory.TransferUseCase
	Counts        *inventory.CountUseCase
	Query         *inventory.MovementQueryUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Idempotency   *cache.IdempotencyStore // nil = sin Idempotency-Key
	JWTSecret     string
	JWTIssuer     string
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	inv := api.Group("/inventory", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	if deps.Idempotency != nil {
		inv.Use(Idempotency(deps.Idempotency, deps.Log))
	}

	stock := RequireRole(RoleAdmin, RoleBodeguero)
	seller := RequireRole(RoleAdmin, RoleVendedor)
	admin := RequireRole(RoleAdmin)

	query := NewMovementQueryHandler(deps.Query, deps.Log)

	// Ventas
	sales := inv.Group("/sales")
	saleHandler := NewSaleHandler(deps.Sales, deps.Log)
	sales.Post("/", seller, saleHandler.Create)
	sales.Get("/", query.List(entity.ProcessSale))
	sales.Get("/:id", query.Get(entity.ProcessSale))
	sales.Put("/:id/lines", seller, saleHandler.UpdateLines)
	sales.Post("/:id/process", seller, saleHandler.Process)
	sales.Post("/:id/close", seller, saleHandler.Close)
	sales.Post("/:id/cancel", seller, saleHandler.Cancel)
	sales.Delete("/:id", seller, query.Delete(entity.ProcessSale))

	// Compras
	purchases := inv.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Purchases, deps.Log)
	purchases.Post("/", stock, purchaseHandler.Create)
	purchases.Get("/", query.List(entity.ProcessPurchase))
	purchases.Get("/:id", query.Get(entity.ProcessPurchase))
	purchases.Put("/:id/lines", stock, purchaseHandler.UpdateLines)
	purchases.Post("/:id/advance", stock, purchaseHandler.Advance)
	purchases.Post("/:id/revert", stock, purchaseHandler.Revert)
	purchases.Post("/:id/cancel", stock, purchaseHandler.Cancel)
	purchases.Post("/:id/transition", stock, purchaseHandler.Transition)
	purchases.Delete("/:id", stock, query.Delete(entity.ProcessPurchase))

	// Ajustes, consumos y producción
	adjHandler := NewAdjustmentHandler(deps.Adjustments, deps.Production, deps.Log)
	adjustments := inv.Group("/adjustments")
	adjustments.Post("/", stock, adjHandler.CreateAdjustment)
	adjustments.Get("/", query.List(entity.ProcessAdjustment))
	adjustments.Get("/:id", query.Get(entity.ProcessAdjustment))
	adjustments.Delete("/:id", admin, query.Delete(entity.ProcessAdjustment))

	usages := inv.Group("/usages")
	usages.Post("/", stock, adjHandler.CreateUsage)
	usages.Get("/", query.List(entity.ProcessUsage))
	usages.Get("/:id", query.Get(entity.ProcessUsage))
	usages.Delete("/:id", admin, query.Delete(entity.ProcessUsage))

	productions := inv.Group("/productions")
	productions.Post("/", stock, adjHandler.Produce)
	productions.Get("/", query.List(entity.ProcessProduction))
	productions.Get("/:id", query.Get(entity.ProcessProduction))
	productions.Post("/:id/revert", admin, adjHandler.RevertProduction)
	productions.Delete("/:id", admin, query.Delete(entity.ProcessProduction))

	// Traslados
	transfers := inv.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers, deps.Log)
	transfers.Post("/", stock, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/approve", admin, transferHandler.Approve)
	transfers.Post("/:id/reject", admin, transferHandler.Reject)
	transfers.Post("/:id/ship", stock, transferHandler.Ship)
	transfers.Post("/:id/receive", stock, transferHandler.Receive)
	transfers.Post("/:id/cancel", stock, transferHandler.Cancel)
	transfers.Delete("/:id", stock, transferHandler.Delete)

	// Conteos físicos
	counts := inv.Group("/counts")
	countHandler := NewCountHandler(deps.Counts, deps.Log)
	counts.Post("/", stock, countHandler.Create)
	counts.Get("/", countHandler.List)
	counts.Get("/:id", countHandler.Get)
	counts.Post("/:id/start", stock, countHandler.Start)
	counts.Post("/:id/records", stock, countHandler.RecordCount)
	counts.Post("/:id/complete", admin, countHandler.Complete)
	counts.Post("/:id/cancel", stock, countHandler.Cancel)
	counts.Delete("/:id", stock, countHandler.Delete)

	// Saldos, kardex y reposición
	invHandler := NewInventoryHandler(deps.Query, deps.Replenishment, deps.Log)
	inv.Post("/balances", stock, invHandler.InitBalance)
	inv.Get("/balances", invHandler.GetBalance)
	inv.Get("/kardex", invHandler.Kardex)
	inv.Get("/replenishment-list", invHandler.GetReplenishmentList)
}
