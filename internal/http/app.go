package http

import (
	"context"

	"leasing_portal_backend/internal/events"
	"leasing_portal_backend/platform/logger"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the application configuration.
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}

// RouterConfig is the slice of configuration the router needs.
type RouterConfig interface {
	GetJWTAccessSecret() string
	GetEnv() string
	CORSAllowedOrigins() (allowAll bool, origins []string, allowCredentials bool)
}
