// Package router assembles the gin engine of the order desk API.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/metrics"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/handler"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithMiddleware adds middleware to the versioned API group only
func WithMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	api.Use(r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig configures the engine built by NewEngine
type EngineConfig struct {
	Logger  *zap.Logger
	Metrics *metrics.Collectors
	CORS    middleware.CORSConfig
	System  *handler.SystemHandler
	// ServiceName enables request tracing when set
	ServiceName string
	Swagger     bool
}

// NewEngine creates a gin engine with the global middleware chain and the
// unversioned /health, /metrics and /swagger endpoints.
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.Recovery(cfg.Logger), middleware.RequestID())
	if cfg.ServiceName != "" {
		engine.Use(middleware.Tracing(cfg.ServiceName)...)
	}
	engine.Use(
		logger.GinMiddleware(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
		middleware.CORSWithConfig(cfg.CORS),
	)

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
	}
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return engine
}
