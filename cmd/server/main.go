package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/domain/order"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/backend"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/config"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/logger"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/metrics"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/session"
	"github.com/mehmetnuribasa/boreksan/internal/infrastructure/telemetry"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/handler"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/middleware"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Böreksan Order Desk API
//	@version		1.0
//	@description	Order desk for the Böreksan bakery: orders, the daily shop by product matrix, target reconciliation and reports
//	@contact.name	Böreksan
//	@host			localhost:8080
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting order desk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("timezone", cfg.App.Timezone),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	loc := cfg.Location()
	collectors := metrics.New("boreksan")

	tokens, closeTokens, err := newTokenStore(cfg)
	if err != nil {
		log.Fatal("Failed to set up token store", zap.Error(err))
	}
	defer closeTokens()

	// The refresh cookie set at login lives in the jar; the refresher shares
	// it but bypasses the guard.
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatal("Failed to create cookie jar", zap.Error(err))
	}
	transport := http.DefaultTransport
	refreshURL, err := backend.JoinURL(cfg.Backend.BaseURL, cfg.Backend.RefreshPath)
	if err != nil {
		log.Fatal("Invalid refresh URL", zap.Error(err))
	}
	refresher := session.NewHTTPRefresher(&http.Client{Jar: jar, Transport: transport, Timeout: cfg.Backend.Timeout}, refreshURL)

	var sessions *desk.SessionService
	guard := session.NewGuard(transport, tokens, refresher,
		session.WithBypassPaths(cfg.Backend.LoginPath, cfg.Backend.RegisterPath, cfg.Backend.RefreshPath),
		session.WithExpiredHook(func(ctx context.Context) { sessions.MarkExpired(ctx) }),
		session.WithMetrics(collectors),
		session.WithLogger(log),
		session.WithRefreshTimeout(cfg.Backend.Timeout),
	)

	client, err := backend.New(backend.Config{
		BaseURL:      cfg.Backend.BaseURL,
		RateLimit:    cfg.Backend.RateLimit,
		Burst:        cfg.Backend.Burst,
		LoginPath:    cfg.Backend.LoginPath,
		RegisterPath: cfg.Backend.RegisterPath,
		LogoutPath:   cfg.Backend.LogoutPath,
		Location:     loc,
	}, &http.Client{Jar: jar, Transport: guard, Timeout: cfg.Backend.Timeout},
		backend.WithMetrics(collectors),
		backend.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create backend client", zap.Error(err))
	}

	cutoff, err := order.ParseCutoff(cfg.Orders.Cutoff)
	if err != nil {
		log.Fatal("Invalid order cut-off", zap.Error(err))
	}

	// Initialize application services
	sessions = desk.NewSessionService(client, tokens, time.Now, log)
	board := desk.NewBoard(client, client, desk.WithBoardMetrics(collectors), desk.WithBoardLogger(log))
	reports := desk.NewReportService(board, loc, time.Now)
	lifecycle := desk.NewLifecycleService(client, board, log)
	orders := desk.NewOrderService(client, board, desk.OrderConfig{
		Cutoff:   cutoff,
		Location: loc,
		Logger:   log,
	})
	reconcile := desk.NewReconcileService(client, board, desk.ReconcileConfig{
		Location:    loc,
		MaxParallel: cfg.Reconcile.MaxParallel,
		Metrics:     collectors,
		Logger:      log,
	})
	products := desk.NewProductService(client, board)

	if cfg.Operator.Username != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		if _, err := sessions.Login(ctx, cfg.Operator.Username, cfg.Operator.Password); err != nil {
			log.Warn("Operator auto-login failed", zap.String("username", cfg.Operator.Username), zap.Error(err))
		}
		cancel()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine := router.NewEngine(router.EngineConfig{
		Logger:      log,
		Metrics:     collectors,
		CORS:        cors,
		System:      handler.NewSystemHandler(cfg.App.Name),
		ServiceName: cfg.App.Name,
		Swagger:     cfg.HTTP.SwaggerEnabled,
	})

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.Operator(sessions.Operator)),
	)
	r.Register(handler.NewSessionHandler(sessions)).
		Register(handler.NewOrderHandler(reports, lifecycle, orders)).
		Register(handler.NewMatrixHandler(reports, reconcile)).
		Register(handler.NewReportHandler(reports)).
		Register(handler.NewProductHandler(products))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newTokenStore picks the configured token store. The returned func releases it.
func newTokenStore(cfg *config.Config) (session.TokenStore, func(), error) {
	if cfg.Session.Store != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}
	store, err := session.NewRedisStore(session.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Session.RedisKey, cfg.Session.TTL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
