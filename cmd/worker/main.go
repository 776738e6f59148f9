package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leasing_portal_backend/internal/config"
	"leasing_portal_backend/internal/db"
	"leasing_portal_backend/internal/email"
	"leasing_portal_backend/internal/scheduler"
	"leasing_portal_backend/platform/logger"
)

// The worker drains the notification delivery queue: it loads pending
// notification rows, sends the lead alert email, and marks them sent.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the delivery worker")
	}

	log := logger.New(cfg.Env)
	log.Info("starting delivery worker", "env", cfg.Env, "queue", cfg.AsynqQueue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var sender email.Sender = email.NoopSender{}
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFromAddr, cfg.EmailFromName)
		log.Info("smtp sender configured", "host", cfg.SMTPHost, "from", cfg.EmailFromAddr)
	} else {
		log.Warn("EMAIL_ENABLED is false; deliveries will be logged and marked sent without sending")
	}

	worker, err := scheduler.NewWorker(cfg, pool, sender, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("delivery worker stopped")
}
