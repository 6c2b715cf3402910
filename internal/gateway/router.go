// Package gateway wires the REST surface of the POS engine onto gin.
package gateway

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resto-system/internal/gateway/handlers"
	"resto-system/internal/gateway/middleware"
	"resto-system/internal/health"
	"resto-system/internal/services/inventory"
	"resto-system/internal/services/pos"
)

type Deps struct {
	POS         *pos.Service
	Inventory   *inventory.Ledger
	Health      *health.Checker
	Log         *zap.Logger
	JWTSecret   []byte
	RateLimit   string
	ServiceName string
}

func NewRouter(d Deps) (*gin.Engine, error) {
	rateLimit, err := middleware.RateLimit(d.RateLimit)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(d.ServiceName))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(gin.Recovery())
	r.Use(rateLimit)

	healthHandler := handlers.NewHealthHTTPHandler(d.Health)
	posHandler := handlers.NewPOSHTTPHandler(d.POS)
	inventoryHandler := handlers.NewInventoryHTTPHandler(d.Inventory)

	r.GET("/health", healthHandler.Health)
	r.GET("/health/detailed", healthHandler.DetailedHealth)

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(d.JWTSecret))
	{
		orders := protected.Group("/orders")
		{
			orders.POST("", posHandler.OpenOrder)
			orders.GET("", posHandler.ListOrders)
			orders.GET("/:id", posHandler.GetOrder)
			orders.POST("/:id/status", posHandler.ChangeStatus)
		}

		lines := protected.Group("/order-lines")
		{
			lines.POST("", posHandler.AddLine)
			lines.DELETE("/:id", posHandler.RemoveLine)
		}

		protected.POST("/payments", posHandler.Pay)

		tables := protected.Group("/tables")
		{
			tables.GET("", posHandler.ListTables)
			tables.GET("/:id", posHandler.GetTable)
			tables.POST("/:id/free", posHandler.FreeTable)
		}

		inventoryGroup := protected.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryHandler.ListInventory)
			inventoryGroup.GET("/movements", inventoryHandler.ListMovements)
			inventoryGroup.GET("/:id", inventoryHandler.GetRecord)
			inventoryGroup.POST("/:id/adjust", inventoryHandler.AdjustStock)
		}

		protected.POST("/products/:id/inventory", inventoryHandler.InitProductStock)
	}

	return r, nil
}
