package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/api/handlers"
	"github.com/jafarshop/procurement/internal/api/middleware"
	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/service"
)

// Services are the components the console routes call into
type Services struct {
	Cart      *service.CartBuilder
	Inventory handlers.Inventory
	Sessions  middleware.SessionChecker
	Health    func(ctx context.Context) error
	Printer   *message.Printer
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterJSONFieldNames()

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check; reports the upstream API as well
	router.GET("/health", func(c *gin.Context) {
		if svc.Health != nil {
			if err := svc.Health(c.Request.Context()); err != nil {
				c.JSON(503, gin.H{"status": "degraded", "api": err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cart := handlers.NewCartHandler(svc.Cart, svc.Printer, logger)

	// API v1 routes, all behind the session gate
	v1 := router.Group("/v1")
	v1.Use(middleware.RequireSession(svc.Sessions, svc.Printer, logger))
	{
		v1.GET("/me", handlers.HandleMe)
		v1.GET("/dashboard", handlers.HandleDashboard(svc.Inventory, svc.Printer, logger))

		v1.GET("/suppliers", handlers.HandleListSuppliers(svc.Inventory, svc.Printer, logger))
		v1.POST("/suppliers", handlers.HandleSaveSupplier(svc.Inventory, svc.Printer, logger))
		v1.PUT("/suppliers/:id", handlers.HandleSaveSupplier(svc.Inventory, svc.Printer, logger))
		v1.DELETE("/suppliers/:id", handlers.HandleDeleteSupplier(svc.Inventory, svc.Printer, logger))

		v1.GET("/items", handlers.HandleListItems(svc.Inventory, svc.Printer, logger))
		v1.GET("/items/search", handlers.HandleSearchItems(svc.Inventory, svc.Printer, logger))
		v1.POST("/items", handlers.HandleSaveItem(svc.Inventory, svc.Printer, logger))
		v1.PUT("/items/:id", handlers.HandleSaveItem(svc.Inventory, svc.Printer, logger))
		v1.DELETE("/items/:id", handlers.HandleDeleteItem(svc.Inventory, svc.Printer, logger))

		// Purchase page events
		v1.GET("/cart", cart.HandleGetCart)
		v1.POST("/cart/open", cart.HandleOpen)
		v1.PUT("/cart/supplier", cart.HandleSelectSupplier)
		v1.POST("/cart/lines", cart.HandleAddLine)
		v1.DELETE("/cart/lines/:itemId", cart.HandleRemoveLine)
		v1.POST("/cart/reset", cart.HandleReset)
		v1.POST("/cart/submit", cart.HandleSubmit)
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
