package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/product-api/docs"
	"github.com/99minutos/product-api/internal/api/handler"
	"github.com/99minutos/product-api/internal/api/middleware"
	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth     ports.AuthService
	Products ports.ProductService
	Checks   map[string]handler.Check
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// HTTP metrics go to a per-router registry; /metrics serves it together
	// with the default registry holding the domain metrics.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.ContextLogger(deps.Log))
	e.Use(middleware.AccessLog(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: httpMetrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/user/register", authHandler.Register)
	e.POST("/user/login", authHandler.Login)

	// --- Product routes ---
	productHandler := handler.NewProductHandler(deps.Products, deps.Log)
	readers := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)
	writers := middleware.RBAC(domain.RoleAdmin)

	products := e.Group("/product", middleware.Auth(deps.Auth))
	products.GET("", productHandler.List, readers)
	products.GET("/:id", productHandler.Get, readers)
	products.POST("", productHandler.Create, writers)
	products.PUT("/:id", productHandler.Update, writers)
	products.DELETE("/:id", productHandler.Delete, writers)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
