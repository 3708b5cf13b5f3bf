package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/fekuna/omnipos-sales-service/config"
	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/server"
	"github.com/fekuna/omnipos-sales-service/internal/storage"
	"github.com/fekuna/omnipos-sales-service/migrations"
	"github.com/fekuna/omnipos-sales-service/pkg/broker"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/i18n"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/fekuna/omnipos-sales-service/pkg/metrics"
	"github.com/fekuna/omnipos-sales-service/pkg/middleware"
	"github.com/fekuna/omnipos-sales-service/pkg/search"

	catH "github.com/fekuna/omnipos-sales-service/internal/catalog/handler"
	catRepoPkg "github.com/fekuna/omnipos-sales-service/internal/catalog/repository"
	catUCPkg "github.com/fekuna/omnipos-sales-service/internal/catalog/usecase"

	checkoutH "github.com/fekuna/omnipos-sales-service/internal/checkout/handler"
	checkoutRepoPkg "github.com/fekuna/omnipos-sales-service/internal/checkout/repository"
	checkoutUCPkg "github.com/fekuna/omnipos-sales-service/internal/checkout/usecase"

	financeH "github.com/fekuna/omnipos-sales-service/internal/finance/handler"
	financeRepoPkg "github.com/fekuna/omnipos-sales-service/internal/finance/repository"
	financeUCPkg "github.com/fekuna/omnipos-sales-service/internal/finance/usecase"

	invH "github.com/fekuna/omnipos-sales-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-sales-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-sales-service/internal/inventory/usecase"

	outboxRelayPkg "github.com/fekuna/omnipos-sales-service/internal/outbox/relay"
	outboxRepoPkg "github.com/fekuna/omnipos-sales-service/internal/outbox/repository"

	profileH "github.com/fekuna/omnipos-sales-service/internal/profile/handler"
	profileRepoPkg "github.com/fekuna/omnipos-sales-service/internal/profile/repository"
	profileUCPkg "github.com/fekuna/omnipos-sales-service/internal/profile/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 2.5 Initialize i18n
	translator, err := i18n.New()
	if err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		appLogger.Fatal("Unknown timezone", zap.String("timezone", cfg.Server.Timezone), zap.Error(err))
	}

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.MigrateOnStartup {
		if err := postgres.Migrate(db, migrations.FS, "."); err != nil {
			appLogger.Fatal("Could not migrate database", zap.Error(err))
		}
		appLogger.Info("Database migrations applied")
	}
	txManager := postgres.NewTxManager(db)

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	financeRepo := financeRepoPkg.NewPGRepository(db)
	profileRepo := profileRepoPkg.NewPGRepository(db)
	checkoutRepo := checkoutRepoPkg.NewPGRepository(db)
	outboxRepo := outboxRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Producer
	producer, err := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.SalesTopic,
	})
	switch {
	case errors.Is(err, broker.ErrDisabled):
		appLogger.Warn("Kafka brokers not configured, sale events stay in the outbox")
	case err != nil:
		appLogger.Fatal("Could not create Kafka producer", zap.Error(err))
	default:
		defer producer.Close()
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.SalesTopic))
	}

	// 5.8 Initialize Elasticsearch
	var searcher catUCPkg.Searcher
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, catalog search uses Postgres", zap.Error(err))
	} else {
		searcher = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 5.9 Initialize Blob Storage
	blobs, err := storage.NewLocalStore(cfg.Storage.Root, cfg.Storage.BaseURL)
	if err != nil {
		appLogger.Fatal("Could not prepare blob storage", zap.Error(err))
	}

	// 5.10 Initialize Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(registry, "sales")
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	// 6. Initialize UseCases
	catUC := catUCPkg.NewCatalogUseCase(catRepo, redisClient, searcher, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger)
	financeUC := financeUCPkg.NewFinanceUseCase(financeRepo, txManager, blobs, appLogger)
	profileUC := profileUCPkg.NewProfileUseCase(profileRepo, appLogger)
	checkoutUC := checkoutUCPkg.NewCheckoutUseCase(checkoutUCPkg.Deps{
		Repo:      checkoutRepo,
		Tx:        txManager,
		Catalog:   catUC,
		Inventory: invUC,
		Finance:   financeUC,
		Profiles:  profileUC,
		Outbox:    outboxRepo,
		Blobs:     blobs,
		Localizer: translator.Localizer("en"),
		Metrics:   checkoutMetrics,
		Logger:    appLogger,
		Location:  location,
		Topic:     cfg.Kafka.SalesTopic,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6.5 Start Outbox Relay
	if producer != nil {
		relay := outboxRelayPkg.NewRelay(outboxRepo, txManager, producer, appLogger, cfg.Kafka.RelayBatch, cfg.Kafka.RelayPeriod)
		go relay.Start(ctx)
	}

	// 7. Initialize Handlers
	router := server.NewRouter(server.Options{
		Logger:         appLogger,
		Translator:     translator,
		ServerMetrics:  serverMetrics,
		Gatherer:       registry,
		RequestTimeout: cfg.Server.RequestTimeout,
		FilesRoot:      cfg.Storage.Root,
		Health: map[string]server.Pinger{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Client.Ping(ctx).Err() },
		},
		Catalog:   catH.NewCatalogHandler(catUC, appLogger),
		Profiles:  profileH.NewProfileHandler(profileUC, appLogger),
		Checkout:  checkoutH.NewCheckoutHandler(checkoutUC, appLogger),
		Inventory: invH.NewInventoryHandler(invUC, appLogger),
		Finance:   financeH.NewFinanceHandler(financeUC, appLogger),
	})

	// 8. Start HTTP Server
	httpServer := &http.Server{
		Addr:              withColon(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 9. Start gRPC Server
	port := withColon(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(auth.UnaryInterceptor(), middleware.UnaryLogging(appLogger)),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
