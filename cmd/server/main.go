package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	catalogapp "github.com/dentalshop/backend/internal/application/catalog"
	cartapp "github.com/dentalshop/backend/internal/application/cart"
	contentapp "github.com/dentalshop/backend/internal/application/content"
	identityapp "github.com/dentalshop/backend/internal/application/identity"
	orderapp "github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/application/stockalert"
	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/infrastructure/cache"
	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/dentalshop/backend/internal/infrastructure/event"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/dentalshop/backend/internal/infrastructure/persistence"
	"github.com/dentalshop/backend/internal/infrastructure/printing"
	"github.com/dentalshop/backend/internal/infrastructure/storage"
	"github.com/dentalshop/backend/internal/infrastructure/telemetry"
	"github.com/dentalshop/backend/internal/interfaces/http/handler"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/dentalshop/backend/internal/interfaces/http/router"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/dentalshop/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting dental shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()
	otelCfg := telemetry.ConfigFrom(cfg.Telemetry, cfg.App.Env)

	// Log export first, so every later entry reaches the collector too
	logCfg := otelCfg
	logCfg.Enabled = cfg.Telemetry.LogsExportEnabled
	logExport, err := telemetry.NewLogExporter(ctx, logCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logExport.Enabled() {
		log = logger.WithCore(log, logExport.Core(logger.ParseLevel(cfg.Log.Level)))
	}

	// Tracing is a no-op provider when telemetry is disabled
	tp, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() {
		tp.EnableSpanProfiles()
	}

	meterCfg := otelCfg
	meterCfg.Enabled = cfg.Telemetry.MetricsExportEnabled
	meter, err := telemetry.NewShopMeter(ctx, meterCfg, cfg.Telemetry.MetricsExportInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metric export", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		MaxSQLLength:  2048,
	})

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log).
			WithTracerProvider(tp)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// SQLite is the local development path; postgres schemas come from cmd/migrate
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	// Redis backs carts, the category cache and revoked tokens
	caches := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err := caches.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	cartStore := caches.CartStore(cfg.Cart.SessionTTL)
	blacklist := caches.TokenBlacklist()

	metrics := telemetry.NewMetrics()
	if err := metrics.WatchPool(db.Pool(), cfg.Database.DBName); err != nil {
		log.Fatal("Failed to register pool metrics", zap.Error(err))
	}
	signals := telemetry.Tee{metrics, meter}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log).WithTracerProvider(tp)
	eventBus.Subscribe(event.NewOrderPlacedHandler(signals, log))
	eventBus.Subscribe(event.NewAuditHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	articleRepo := persistence.NewGormArticleRepository(db.DB)
	caseStudyRepo := persistence.NewGormCaseStudyRepository(db.DB)

	images, err := storage.NewImageStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo, reviewRepo,
		caches.CategoryCache(cache.DefaultCategoryTTL), eventBus, log)
	reviewService := catalogapp.NewReviewService(persistence.NewGormReviewScope(db.DB), eventBus, log)
	cartService := cartapp.NewCartService(cartStore, productRepo, log)
	checkoutService := orderapp.NewCheckoutService(persistence.NewGormCheckoutScope(db.DB), cartStore, eventBus, log)
	adminOrderService := orderapp.NewAdminOrderService(orderRepo, eventBus, log)
	articleService := contentapp.NewArticleService(articleRepo, images, log)
	caseStudyService := contentapp.NewCaseStudyService(caseStudyRepo, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, eventBus, log)

	notifier := stockalert.NewNotifier(productRepo, stockalert.Config{
		PollInterval: cfg.StockAlert.PollInterval,
		ErrorBackoff: cfg.StockAlert.ErrorBackoff,
	}, stockalert.WithLogger(log), stockalert.WithObserver(signals))

	var slips handler.SlipPrinter
	var pdfRenderer *printing.PDFRenderer
	if cfg.Printing.Enabled {
		pdfRenderer = printing.NewPDFRenderer(cfg.Printing, log)
		slips = printing.NewSlipPrinter(pdfRenderer, cfg.Printing)
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if client := caches.Client(); client != nil {
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, checks)

	handlers := router.Handlers{
		System:           systemHandler,
		Catalog:          handler.NewCatalogHandler(productService, reviewService),
		Cart:             handler.NewCartHandler(cartService),
		Checkout:         handler.NewCheckoutHandler(checkoutService),
		Auth:             handler.NewAuthHandler(authService),
		Content:          handler.NewContentHandler(articleService, caseStudyService),
		AdminProducts:    handler.NewAdminProductHandler(productService),
		AdminOrders:      handler.NewAdminOrderHandler(adminOrderService, slips),
		AdminArticles:    handler.NewAdminArticleHandler(articleService, cfg.Storage.MaxImageSize),
		AdminCaseStudies: handler.NewAdminCaseStudyHandler(caseStudyService),
		StockAlerts:      handler.NewStockAlertHandler(notifier, handler.WithStockAlertLogger(log)),
	}

	jwtCfg := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	streamCfg := jwtCfg
	streamCfg.AllowQueryToken = true

	guards := router.Guards{
		Auth:         middleware.JWTAuth(jwtCfg),
		StreamAuth:   middleware.JWTAuth(streamCfg),
		OptionalAuth: middleware.OptionalJWT(jwtCfg),
		Admin:        middleware.RequireAdmin(middleware.PermissionConfig{Logger: log}),
		CartSession: middleware.CartSession(middleware.CartSessionConfig{
			CookieName: cfg.Cart.CookieName,
			CookiePath: cfg.Cart.CookiePath,
			Secure:     cfg.Cart.CookieSecure,
			TTL:        cfg.Cart.SessionTTL,
		}),
	}
	var limiters []*middleware.RateLimiter
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, authLimiter)
		guards.AuthRateLimit = middleware.RateLimitByKey(authLimiter, func(c *gin.Context) string {
			return "auth:" + c.ClientIP()
		})
	}

	// Set Gin mode
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	probes := []string{"/health", "/metrics"}
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Enabled:        cfg.Telemetry.Enabled,
		TracerProvider: tp,
		SkipPaths:      probes,
	})...)
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, probes...))
	security := middleware.DefaultSecurityConfig()
	if cfg.App.IsProduction() {
		security = middleware.ProductionSecurityConfig()
	}
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(middleware.BodyLimitConfig{
		MaxBytes:      cfg.HTTP.MaxBodySize,
		MaxImageBytes: cfg.Storage.MaxImageSize,
	}))
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(middleware.HTTPMetrics(metrics, probes...))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", systemHandler.Health)
	if cfg.Telemetry.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if cfg.Storage.Driver == config.StorageLocal {
		engine.Static(cfg.Storage.PublicPrefix, cfg.Storage.LocalDir)
	}
	if cfg.HTTP.SwaggerEnabled {
		docs := []gin.HandlerFunc{ginSwagger.WrapHandler(swaggerFiles.Handler)}
		// production keeps the reference behind the admin login
		if cfg.App.IsProduction() {
			docs = append([]gin.HandlerFunc{guards.Auth, guards.Admin}, docs...)
		}
		engine.GET("/swagger/*any", docs...)
	}

	router.Mount(engine, router.DefaultAPIVersion, router.Storefront(handlers, guards)...)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Teardown runs in dependency order: stop taking requests before the
	// stores they use are closed.
	wait := gfshutdown.GracefulShutdown(ctx, cfg.HTTP.ShutdownTimeout, map[string]gfshutdown.Operation{
		"dentalshop": func(ctx context.Context) error {
			log.Info("Shutting down server...")
			var errs []error
			if err := srv.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			for _, l := range limiters {
				l.Stop()
			}
			if err := eventBus.Stop(ctx); err != nil {
				errs = append(errs, err)
			}
			if pdfRenderer != nil {
				pdfRenderer.Close()
			}
			if err := tp.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			if err := meter.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			if err := profiler.Stop(); err != nil {
				errs = append(errs, err)
			}
			if err := caches.Close(); err != nil {
				errs = append(errs, err)
			}
			if err := db.Close(); err != nil {
				errs = append(errs, err)
			}
			// last, so the shutdown entries above are exported
			if err := logExport.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		},
	})

	exitCode := <-wait
	log.Info("Server exited", zap.Int("code", exitCode))
	logger.Sync(log)
	os.Exit(exitCode)
}
