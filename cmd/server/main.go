package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kurniadi/booking-service/internal/adapters/postgres"
	"github.com/kurniadi/booking-service/internal/adapters/rabbitmq"
	"github.com/kurniadi/booking-service/internal/adapters/xendit"
	"github.com/kurniadi/booking-service/internal/config"
	cronhandlers "github.com/kurniadi/booking-service/internal/handlers/cron"
	"github.com/kurniadi/booking-service/internal/services/disbursement"
	"github.com/kurniadi/booking-service/internal/services/settlement"
	"github.com/kurniadi/booking-service/pkg/observability"
	"github.com/kurniadi/booking-service/pkg/security"
	"github.com/kurniadi/booking-service/pkg/shutdown"
)

func main() {
	// Load .env if present (development convenience, no-op in production)
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting booking settlement service",
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.String("secrets_backend", cfg.Secrets.Backend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sm := shutdown.NewManager(logger, 30*time.Second)

	// Database
	dbPool, err := initDatabase(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	sm.RegisterNoErr("database", dbPool.Close)

	db := postgres.NewDBExecutor(dbPool)
	reservationRepo := postgres.NewReservationRepository(db)
	itemRepo := postgres.NewReservationItemRepository(db)
	distributionRepo := postgres.NewDistributionRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	bankAccountRepo := postgres.NewBankAccountRepository(db)

	// Secret manager and payout provider credentials
	secretManager, err := initSecretManager(ctx, &cfg.Secrets, logger)
	if err != nil {
		logger.Fatal("Failed to initialize secret manager", zap.Error(err))
	}

	apiKey, err := secretManager.GetSecret(ctx, cfg.Payout.APIKeySecretPath)
	if err != nil {
		logger.Fatal("Failed to fetch payout provider API key",
			zap.Error(err),
			zap.String("path", cfg.Payout.APIKeySecretPath),
		)
	}

	portLogger := security.NewZapLogger(logger)

	// Payout gateway
	httpClient := &http.Client{Timeout: time.Duration(cfg.Payout.Timeout) * time.Second}
	gateway := xendit.NewDisbursementAdapter(
		cfg.Payout.BaseURL,
		apiKey.Value,
		cfg.Payout.RequestsPerSecond,
		httpClient,
		portLogger,
	)

	// Task queue
	publisher, err := rabbitmq.NewPublisher(cfg.Queue.URL, portLogger)
	if err != nil {
		logger.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	sm.RegisterCloser("publisher", publisher)

	// Services
	settlementSvc := settlement.NewService(
		db,
		reservationRepo,
		itemRepo,
		distributionRepo,
		catalogRepo,
		publisher,
		portLogger,
	)

	worker := disbursement.NewWorker(
		distributionRepo,
		reservationRepo,
		bankAccountRepo,
		gateway,
		portLogger,
	)

	// Disbursement consumer
	consumerCfg := rabbitmq.ConsumerConfig{
		URL:         cfg.Queue.URL,
		Prefetch:    cfg.Queue.Prefetch,
		MaxAttempts: cfg.Queue.MaxAttempts,
		RetryDelay:  time.Duration(cfg.Queue.RetryDelay) * time.Second,
	}
	consumer := rabbitmq.NewConsumer(consumerCfg, worker.Process, portLogger)

	consumerDone := make(chan error, 1)
	consumerFailed := make(chan struct{})
	go func() {
		err := consumer.Run(ctx)
		consumerDone <- err
		if ctx.Err() == nil {
			if err != nil {
				logger.Error("Disbursement consumer stopped", zap.Error(err))
			}
			close(consumerFailed)
		}
	}()

	sm.Register("disbursement_consumer", func(shutdownCtx context.Context) error {
		cancel()
		select {
		case <-consumerDone:
			return nil
		case <-shutdownCtx.Done():
			return fmt.Errorf("timed out waiting for consumer: %w", shutdownCtx.Err())
		}
	})

	// Operational HTTP server: metrics, health, cron endpoints
	healthChecker := observability.NewHealthChecker(dbPool)
	healthChecker.AddCheck("broker", func(ctx context.Context) error {
		return publisher.Ping()
	})

	reconcileHandler := cronhandlers.NewReconcileHandler(settlementSvc, logger, cfg.Cron.Secret)

	httpServer := observability.StartMetricsServer(
		fmt.Sprintf("%d", cfg.Server.MetricsPort),
		healthChecker,
		map[string]http.Handler{
			"/cron/reconcile-disbursements": http.HandlerFunc(reconcileHandler.ReconcileDisbursements),
		},
	)
	sm.Register("metrics_server", func(context.Context) error {
		return observability.ShutdownMetricsServer(httpServer)
	})

	logger.Info("Service started",
		zap.String("queue", rabbitmq.DisbursementQueueName),
		zap.Int("consumer_prefetch", consumerCfg.Prefetch),
	)

	// Blocks until SIGINT/SIGTERM or an unexpected consumer exit, then
	// tears everything down in reverse registration order.
	sm.WaitForShutdown(consumerFailed)
}

// initLogger builds the zap logger from configuration
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return logger
}

// initDatabase initializes the PostgreSQL connection pool
func initDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(connCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
