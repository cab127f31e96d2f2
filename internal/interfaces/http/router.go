package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *inventory.LedgerUseCase
	Query       *inventory.QueryUseCase
	InitialLoad *inventory.InitialLoadUseCase
	Log         *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	hotels := app.Group("/api/hotels/:hotelID", AuthMiddleware(deps.JWTSecret))

	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Query, log)
	writers := RequireRole(RoleAdmin, RoleBodeguero)

	// Mutaciones del libro
	inv := hotels.Group("/inventory")
	inv.Post("/inbound", writers, inventoryHandler.RecordInbound)
	inv.Post("/consume", writers, inventoryHandler.Consume)

	// Lecturas (cualquier rol autenticado)
	hotels.Get("/stock", inventoryHandler.BulkStock)
	hotels.Get("/stock/:productID", inventoryHandler.GetStock)
	products := hotels.Group("/products/:productID")
	products.Get("/batches", inventoryHandler.ActiveBatches)
	products.Get("/movements", inventoryHandler.Movements)
	products.Get("/drift", inventoryHandler.Drift)
	hotels.Get("/consumptions/:reference", inventoryHandler.ExplainConsumption)

	// Carga inicial (solo admin)
	initialLoadHandler := NewInitialLoadHandler(deps.InitialLoad, log)
	admins := RequireRole(RoleAdmin)
	hotels.Get("/initial-load", initialLoadHandler.Status)
	hotels.Post("/initial-load", admins, initialLoadHandler.Submit)
	hotels.Post("/initial-load/upload", admins, initialLoadHandler.Upload)
}
