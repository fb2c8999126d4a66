// Package app wires together all storefront dependencies and runs the server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yosefkovan/storefront/internal/auth"
	"github.com/yosefkovan/storefront/internal/config"
	"github.com/yosefkovan/storefront/internal/event"
	handler "github.com/yosefkovan/storefront/internal/handler/http"
	"github.com/yosefkovan/storefront/internal/repository/postgres"
	redisrepo "github.com/yosefkovan/storefront/internal/repository/redis"
	"github.com/yosefkovan/storefront/internal/service"
	"github.com/yosefkovan/storefront/internal/storage"
	"github.com/yosefkovan/storefront/internal/storage/local"
	"github.com/yosefkovan/storefront/internal/storage/memory"
	"github.com/yosefkovan/storefront/migrations"
	"github.com/yosefkovan/storefront/pkg/database"
	"github.com/yosefkovan/storefront/pkg/health"
	pkgkafka "github.com/yosefkovan/storefront/pkg/kafka"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// PostgreSQL pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.String("database", pgCfg.DBName),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, "storefront")

	// Redis client for session carts.
	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	// Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Product image storage on the local filesystem. An empty IMAGE_DIR
	// switches to the in-memory store (metadata only), for running without
	// a writable disk.
	var store storage.Storage
	var imageRoot string
	if cfg.ImageDir != "" {
		localStore, err := local.New(cfg.ImageDir, cfg.ImageBaseURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init image storage: %w", err)
		}
		store = localStore
		imageRoot = localStore.Root()
	} else {
		store = memory.New(cfg.ImageBaseURL)
	}

	// Build the dependency graph.
	eventProducer := event.NewProducer(producer, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry())

	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTL())

	cartService := service.NewCartService(cartRepo, productRepo, logger)
	productService := service.NewProductService(productRepo, reviewRepo, store, eventProducer, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	orderService := service.NewOrderService(orderRepo, userRepo, cartService, eventProducer, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, userRepo, eventProducer, logger)
	userService := service.NewUserService(userRepo, jwtManager, eventProducer, logger)
	statsService := service.NewStatsService(statsRepo, logger)

	// Seed the admin account so a fresh install has a working back office.
	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	// Health checks. Kafka is non-critical: checkout still works when the
	// broker is down, events are just dropped.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	router := handler.NewRouter(handler.RouterConfig{
		Products:      productService,
		Categories:    categoryService,
		Carts:         cartService,
		Orders:        orderService,
		Reviews:       reviewService,
		Users:         userService,
		Stats:         statsService,
		ValidateToken: jwtManager.ValidateToken,
		Health:        healthHandler,
		SessionTTL:    cfg.CartTTL(),
		ImageRoot:     imageRoot,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		rdb:        rdb,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
