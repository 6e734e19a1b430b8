package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/infra/config"
	"github.com/arklim/orderflow-catalog/internal/infra/database"
	kafkainfra "github.com/arklim/orderflow-catalog/internal/infra/kafka"
	"github.com/arklim/orderflow-catalog/internal/infra/logger"
	redisinfra "github.com/arklim/orderflow-catalog/internal/infra/redis"
	"github.com/arklim/orderflow-catalog/internal/infra/security"
	postgresrepo "github.com/arklim/orderflow-catalog/internal/repository/postgres"
	redisrepo "github.com/arklim/orderflow-catalog/internal/repository/redis"
	"github.com/arklim/orderflow-catalog/internal/transport/http/middleware"
	"github.com/arklim/orderflow-catalog/internal/transport/http/routes"
	"github.com/arklim/orderflow-catalog/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	verifier, err := security.NewTokenVerifier(cfg.JWT)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.FixedWindowConfig{
		KeyPrefix: cfg.RateLimit.KeyPrefix,
	})

	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log).
		WithFailOpen(cfg.RateLimit.FailOpenOnStoreOutage).
		WithMetrics(prometheus.DefaultRegisterer)

	productService := usecase.NewProductService(repos.Products, repos.Categories, eventPublisher, log)
	categoryService := usecase.NewCategoryService(repos.Categories)
	stockService := usecase.NewStockService(repos.Stock, eventPublisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:        cfg,
		Logger:        log,
		RateLimiter:   rateLimiter,
		TokenVerifier: verifier,
		Database:      pool,
		Cache:         redisClient,
		Metrics:       prometheus.DefaultRegisterer,
		Services: routes.ServiceSet{
			Products:   productService,
			Categories: categoryService,
			Stock:      stockService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting catalog API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
