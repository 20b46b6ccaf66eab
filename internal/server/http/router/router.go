package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
	"github.com/shopflow/choreography/internal/server/http/handlers"
	"github.com/shopflow/choreography/internal/server/http/middleware"
)

// Params lists what a service contributes to its HTTP surface. Route groups
// are mounted only for the facades the service provides.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger

	Tokens  middleware.TokenParser `optional:"true"`
	Orders  handlers.OrderFacade   `optional:"true"`
	Baskets handlers.BasketFacade  `optional:"true"`
	Health  handlers.HealthChecker `optional:"true"`
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(p.Config.ServiceName))
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics())
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/healthz", handlers.NewHealthHandler(p.Health).Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if p.Tokens == nil || (p.Orders == nil && p.Baskets == nil) {
		return engine
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.AuthRequired(p.Tokens))

	if p.Orders != nil {
		orderHandler := handlers.NewOrderHandler(p.Orders)
		orders := api.Group("/orders")
		orders.POST("/checkout", orderHandler.Checkout)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.DELETE("/:id", orderHandler.Delete)
	}

	if p.Baskets != nil {
		basketHandler := handlers.NewBasketHandler(p.Baskets)
		api.GET("/basket", basketHandler.Get)
		api.POST("/basket", basketHandler.Update)
		api.DELETE("/basket", basketHandler.Delete)
	}

	return engine
}
