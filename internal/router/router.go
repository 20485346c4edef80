// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/order-desk/internal/config"
	"github.com/iliyamo/order-desk/internal/handler"
	"github.com/iliyamo/order-desk/internal/middleware"
	"github.com/iliyamo/order-desk/internal/repository"
	"github.com/iliyamo/order-desk/internal/service"
)

// Deps is everything the HTTP layer needs. Redis and Events may be nil, in
// which case caching, rate limiting and event publishing are disabled.
type Deps struct {
	DB        *sql.DB
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Events    service.OrderEventPublisher
}

// New builds the echo instance with all middleware and routes mounted.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))
	e.Use(middleware.NewRedisCache(d.Cache, d.Redis))

	RegisterRoutes(e)
	RegisterCustomers(e, handler.NewCustomerHandler(repository.NewCustomerRepo(d.DB)))
	RegisterItems(e, handler.NewItemHandler(repository.NewItemRepo(d.DB)))
	RegisterOrders(e, handler.NewOrderHandler(repository.NewOrderRepo(d.DB), d.Events))
	return e
}

// RegisterRoutes registers routes that are not tied to a resource.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCustomers mounts the /customers resource. Create answers on both
// /customers and /customers/.
func RegisterCustomers(e *echo.Echo, h *handler.CustomerHandler) {
	g := e.Group("/customers")
	g.POST("", h.Create)
	g.POST("/", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterItems mounts the /items resource.
func RegisterItems(e *echo.Echo, h *handler.ItemHandler) {
	g := e.Group("/items")
	g.POST("", h.Create)
	g.POST("/", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterOrders mounts the /orders resource and its line items.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler) {
	g := e.Group("/orders")
	g.POST("", h.Create)
	g.POST("/", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/items", h.ListLines)
	g.POST("/:id/items", h.AddLine)
}
