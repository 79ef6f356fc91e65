package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/pkg/cache"
	"github.com/example/storefront/pkg/mailer"
	"github.com/example/storefront/pkg/messagequeue"
)

func main() {
	// .env is a development convenience; production sets the environment directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: failed to load .env file: %v", err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: failed to load configuration: %v", err)
	}
	if err := appConfig.ValidateServer(); err != nil {
		log.Fatalf("CRITICAL_ERROR: invalid server configuration: %v", err)
	}

	logger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: failed to initialize zap logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	clients, err := db.InitFirebase(initCtx, appConfig, logger)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()
	logger.Info("Firebase Admin SDK (Firestore, Auth) initialized")

	catalogStore, closeCache, err := newCache(initCtx, appConfig)
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: failed to initialize cache", zap.Error(err))
	}
	defer closeCache()
	logger.Info("Cache initialized", zap.String("backend", appConfig.CacheBackend))

	events := newPublisher(appConfig, logger)
	defer events.Close()

	// Repositories
	storeRepo := db.NewFirestoreStoreRepository(clients.Firestore)
	productRepo := db.NewFirestoreProductRepository(clients.Firestore)
	categoryRepo := db.NewFirestoreCategoryRepository(clients.Firestore)
	tagRepo := db.NewFirestoreTagRepository(clients.Firestore)
	subscriptionRepo := db.NewFirestoreSubscriptionRepository(clients.Firestore)
	planRepo := db.NewFirestorePlanRepository(clients.Firestore)
	auditRepo := db.NewFirestoreAuditRepository(clients.Firestore)

	// Services
	provider := identity.NewFirebaseProvider(clients.Auth)
	auditService := core.NewAuditService(auditRepo)
	authService := core.NewAuthService(provider, storeRepo, auditService, logger)
	catalog := core.NewCatalogCache(catalogStore, productRepo, appConfig.ProductCacheTTL, logger)

	subscriptionDeps := core.SubscriptionServiceDeps{
		Subscriptions: subscriptionRepo,
		Plans:         planRepo,
		Stores:        storeRepo,
		Gateway:       mercadopago.NewClient(appConfig.MercadoPagoBaseURL, appConfig.MercadoPagoAccessToken, logger),
		Audit:         auditService,
		Events:        events,
		BackURL:       appConfig.MercadoPagoBackURL,
		Logger:        logger,
	}
	if appConfig.MailEnabled() {
		m, err := mailer.New(mailer.Config{
			Host:   appConfig.SMTPHost,
			Port:   appConfig.SMTPPort,
			User:   appConfig.SMTPUser,
			Pass:   appConfig.SMTPPass,
			Sender: appConfig.MailSender,
		})
		if err != nil {
			logger.Fatal("CRITICAL_ERROR: failed to initialize mailer", zap.Error(err))
		}
		subscriptionDeps.Notifier = m
	} else {
		logger.Warn("SMTP is not configured; subscription emails are disabled")
	}

	services := api.Services{
		Auth:         authService,
		Stores:       core.NewStoreService(storeRepo, authService, auditService, events, logger),
		Products:     core.NewProductService(productRepo, categoryRepo, tagRepo, catalog, auditService, events, logger),
		Categories:   core.NewCategoryService(categoryRepo, productRepo, catalog, auditService, logger),
		Tags:         core.NewTagService(tagRepo, productRepo, catalog, auditService, logger),
		Subscription: core.NewSubscriptionService(subscriptionDeps),
		Storefront:   core.NewStorefrontService(storeRepo, productRepo, categoryRepo, catalog),
	}
	logger.Info("Core services initialized")

	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORSMiddleware(appConfig))

	if appConfig.MercadoPagoWebhookSecret == "" {
		logger.Warn("MERCADOPAGO_WEBHOOK_SECRET is not set; webhook signatures are not verified")
	}
	api.SetupRoutes(router, services, appConfig.MercadoPagoWebhookSecret, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", appConfig.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shut down", zap.Error(err))
	}
	logger.Info("Server exited")
}

func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	if appConfig.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newCache returns the catalog cache backend selected by CACHE_BACKEND and a func
// releasing it.
func newCache(ctx context.Context, appConfig *config.Config) (cache.Cache, func(), error) {
	switch appConfig.CacheBackend {
	case config.CacheBackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   "storefront:",
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { _ = rc.Close() }, nil
	default:
		mc, err := cache.NewRistrettoCache(appConfig.CacheMaxCostBytes)
		if err != nil {
			return nil, nil, err
		}
		return mc, mc.Close, nil
	}
}

// newPublisher connects to RabbitMQ when RABBITMQ_URL is set. A broker that cannot be
// reached is logged and replaced by a no-op publisher; events are best effort.
func newPublisher(appConfig *config.Config, logger *zap.Logger) messagequeue.Publisher {
	if appConfig.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL is not set; domain events are discarded")
		return messagequeue.NoopPublisher{}
	}
	pub, err := messagequeue.NewRabbitMQPublisher(messagequeue.NewRabbitMQPublisherConfig{
		URL:   appConfig.RabbitMQURL,
		Queue: appConfig.EventsQueue,
	}, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ; domain events are discarded", zap.Error(err))
		return messagequeue.NoopPublisher{}
	}
	logger.Info("Publishing domain events to RabbitMQ", zap.String("queue", appConfig.EventsQueue))
	return pub
}
