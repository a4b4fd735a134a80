package main

import (
	"shippingbar-service/internal/catalog"
	"shippingbar-service/internal/handler"
	"shippingbar-service/internal/identity"
	"shippingbar-service/internal/middleware"
	"shippingbar-service/internal/settings"
	"shippingbar-service/internal/store"
	"shippingbar-service/pkg/config"
	"shippingbar-service/pkg/database"
	"shippingbar-service/pkg/logger"
	"shippingbar-service/pkg/wix"
	"shippingbar-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting shipping bar service...", zap.String("environment", cfg.Server.Env))

	prometheus.InitMetrics(cfg)

	st, ping := openStore(cfg, log)

	// A disabled client keeps the service usable without Wix credentials
	wixClient := wix.NewClient(cfg.Wix)
	var gateway settings.Gateway
	var querier catalog.ProductQuerier
	if wixClient.Enabled() {
		gateway, querier = wixClient, wixClient
	} else {
		log.Warn("Wix integration is not configured; running local-only")
	}

	svc := settings.NewService(st, gateway, log)

	cat, err := catalog.New(catalog.Options{
		Querier:  querier,
		Settings: svc,
		TTL:      cfg.Catalog.CacheTTL,
		MaxCost:  cfg.Catalog.CacheMaxCost,
		Limit:    cfg.Catalog.QueryLimit,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to create product catalog", zap.Error(err))
	}
	defer cat.Close()

	resolver := identity.NewResolver(identity.WithDefaultInstance(cfg.DefaultInstance()))

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	e.GET("/metrics", prometheus.HandlerFunc())

	handler.RegisterRoutes(e, handler.Handlers{
		Settings: handler.NewSettingsHandler(svc, resolver),
		Wix:      handler.NewWixHandler(svc),
		OAuth:    handler.NewOAuthHandler(wixClient, svc),
		Products: handler.NewProductHandler(cat, resolver),
		Preview:  handler.NewPreviewHandler(svc),
		Health:   handler.NewHealthHandler(ping),
		Resolver: resolver,
	})

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// openStore picks the settings store named by STORE_DRIVER. The returned ping
// is nil for the in-memory store.
func openStore(cfg *config.Config, log *zap.Logger) (store.Store, func() error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.InitDB(cfg, log, &store.SettingsRow{})
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		log.Info("Database connection established and migrations completed")
		return store.NewPostgresStore(db), func() error { return database.Ping(db) }
	case "memory", "":
		log.Info("Using in-memory settings store")
		return store.NewMemoryStore(), nil
	default:
		log.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
		return nil, nil
	}
}
