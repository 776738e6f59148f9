// Package conversations provides the conversation lifecycle bounded context:
// chatbot conversation writes, status derivation, lead scoring and the
// notification fan-out that accompanies qualifying transitions.
package conversations

import (
	"leasing_portal_backend/internal/conversations/handler"
	"leasing_portal_backend/internal/conversations/repository"
	"leasing_portal_backend/internal/conversations/service"
	"leasing_portal_backend/internal/events"
	apphttp "leasing_portal_backend/internal/http"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversations bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the conversations module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Service exposes the conversations service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Name() string {
	return "conversations"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/conversations"))
	m.handler.RegisterMessageRoutes(ctx.Protected.Group("/messages"))
}
