package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leasing_portal_backend/internal/auth"
	"leasing_portal_backend/internal/config"
	"leasing_portal_backend/internal/conversations"
	"leasing_portal_backend/internal/db"
	"leasing_portal_backend/internal/events"
	apphttp "leasing_portal_backend/internal/http"
	"leasing_portal_backend/internal/managers"
	"leasing_portal_backend/internal/notifications"
	notifservice "leasing_portal_backend/internal/notifications/service"
	"leasing_portal_backend/internal/portfolio"
	"leasing_portal_backend/internal/scheduler"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Redis backs the unread-count cache and the delivery queue. Both are
	// optional: without REDIS_URL, counts hit the database and notification
	// rows stay pending until a worker picks them up.
	redisClient, deliveryClient, closeRedis := initRedis(cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	managersModule := managers.NewModule(pool, val, log)
	authModule := auth.NewModule(managersModule.Repository(), cfg, val, log)
	conversationsModule := conversations.NewModule(pool, eventBus, val, log)

	// Avoid handing the notifications service a typed-nil interface when the
	// queue client is absent.
	var enqueuer notifservice.DeliveryEnqueuer
	if deliveryClient != nil {
		enqueuer = deliveryClient
	}
	notificationsModule := notifications.NewModule(pool, eventBus, redisClient, enqueuer, val, log)
	portfolioModule := portfolio.NewModule(pool, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			managersModule,
			portfolioModule,
			conversationsModule,
			notificationsModule,
		},
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis connects the cache client and the task queue client. Returns
// nils when REDIS_URL is not configured.
func initRedis(cfg *config.Config, log *logger.Logger) (*redis.Client, *scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; unread cache and delivery queue disabled")
		return nil, nil, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		return nil, nil, nil
	}
	redisClient := redis.NewClient(opt)

	deliveryClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize delivery queue client", "error", err)
		deliveryClient = nil
	}

	return redisClient, deliveryClient, func() {
		_ = redisClient.Close()
		if deliveryClient != nil {
			_ = deliveryClient.Close()
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
