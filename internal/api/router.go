package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/closetshop/closet-api/internal/api/handler"
	"github.com/closetshop/closet-api/internal/api/middleware"
	"github.com/closetshop/closet-api/internal/core/ports"
	"github.com/closetshop/closet-api/internal/infrastructure/http/handlers"
)

// Dependencies are the services and probes the router exposes over HTTP.
type Dependencies struct {
	Catalog   ports.CatalogService
	Users     ports.UserService
	Orders    ports.OrderService
	Access    ports.AccessService
	Readiness *handlers.ReadinessHandler

	// MaxImageBytes bounds a single product image upload.
	MaxImageBytes int64
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(deps.Logger))

	// --- Dependencies ---
	productHandler := handler.NewProductHandler(deps.Catalog, deps.MaxImageBytes)
	userHandler := handler.NewUserHandler(deps.Users)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	rootHandler := handler.NewRootHandler(e)
	auth := middleware.Auth(deps.Access)
	admin := middleware.RequireAdmin()

	e.GET("/", rootHandler.Routes)

	// --- Catalog ---
	e.GET("/products", productHandler.List)
	e.POST("/products", productHandler.Create, auth)
	e.GET("/products/:productId", productHandler.Get)
	e.PUT("/products/:productId/featured", productHandler.SetFeatured, auth, admin)
	e.GET("/images/:imageId", productHandler.Image)

	// --- Users & sessions ---
	e.POST("/users", userHandler.Register)
	e.GET("/users/:userId", userHandler.Get, auth)
	e.PUT("/users/:userId", userHandler.Update, auth)
	e.DELETE("/users/:userId", userHandler.Delete, auth)
	e.PUT("/users/:userId/products/:productId", productHandler.ToggleSold, auth)
	e.POST("/sessions", userHandler.CreateSession)

	// --- Orders ---
	e.POST("/orders", orderHandler.Place, auth)
	e.GET("/orders/:orderId", orderHandler.Get, auth)
	e.PUT("/orders/:orderId/status", orderHandler.UpdateStatus, auth, admin)

	// --- Operations (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
