package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/ventas-lotes-api/internal/application/inventory"
	"github.com/jhoicas/ventas-lotes-api/internal/application/sales"
	"github.com/jhoicas/ventas-lotes-api/internal/application/usecase"
	"github.com/jhoicas/ventas-lotes-api/pkg/idempotency"
	"github.com/jhoicas/ventas-lotes-api/pkg/jwt"
	"github.com/jhoicas/ventas-lotes-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC      *usecase.ProductUseCase
	LotLedger      *inventory.LotLedger
	ExitRecorder   *inventory.ExitRecorder
	SaleUC         *sales.SaleUseCase
	SettlementUC   *sales.SettlementUseCase
	DocumentUC     *sales.DocumentUseCase
	Idempotency    idempotency.Store // nil desactiva Idempotency-Key
	IdempotencyTTL time.Duration
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	JWTSecret      string
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Metrics))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api", RequestTimeout(deps.RequestTimeout))

	// Todas las rutas de negocio requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Lotes y salidas
	inventoryHandler := NewInventoryHandler(deps.LotLedger, deps.ExitRecorder)
	products.Post("/:id/lots", inventoryHandler.AddLot)
	products.Get("/:id/lots", inventoryHandler.ListLots)
	products.Get("/:id/lots/:lotId/available", inventoryHandler.Available)
	products.Post("/:id/exits", inventoryHandler.RecordExit)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.SettlementUC, deps.DocumentUC)
	salesGroup.Post("/", idem, saleHandler.Create)
	salesGroup.Post("/batch", idem, saleHandler.CreateBatch)
	salesGroup.Get("/", saleHandler.ListByDateRange)
	salesGroup.Get("/report/export", saleHandler.Export)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id/lines", saleHandler.UpdateLines)
	salesGroup.Delete("/:id", RequireRole(jwt.RoleAdmin), saleHandler.Delete)
	salesGroup.Post("/:id/payments", saleHandler.AddPayment)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Clients (solo lectura de ventas pendientes)
	protected.Get("/clients/:clientId/sales/pending", saleHandler.ListPendingForClient)
}
