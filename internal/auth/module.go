// Package auth provides the authentication bounded context module.
package auth

import (
	"leasing_portal_backend/internal/auth/handler"
	"leasing_portal_backend/internal/auth/service"
	"leasing_portal_backend/internal/config"
	apphttp "leasing_portal_backend/internal/http"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/validator"
)

// Module is the auth bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the auth module. The credential store is the managers
// repository; auth owns no tables of its own.
func NewModule(store service.CredentialStore, cfg *config.Config, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(store, cfg, log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "auth"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)
}

var _ apphttp.Module = (*Module)(nil)
