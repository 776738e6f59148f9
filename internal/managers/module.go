// Package managers provides the property manager bounded context: manager
// records, access levels and the property assignment registry.
package managers

import (
	apphttp "leasing_portal_backend/internal/http"
	"leasing_portal_backend/internal/managers/handler"
	"leasing_portal_backend/internal/managers/repository"
	"leasing_portal_backend/internal/managers/service"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the managers bounded context implementing http.Module.
type Module struct {
	handler    *handler.Handler
	repository *repository.Repository
}

// NewModule creates and initializes the managers module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler:    handler.New(svc, val),
		repository: repo,
	}
}

// Repository exposes the manager store for cross-module wiring (auth login).
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

func (m *Module) Name() string {
	return "managers"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/managers"))
	m.handler.RegisterAssignmentRoutes(ctx.Protected.Group("/assignments"))
}
