// Package portfolio provides the property portfolio bounded context:
// company profile, properties, chatbots, FAQs and website integrations.
package portfolio

import (
	apphttp "leasing_portal_backend/internal/http"
	"leasing_portal_backend/internal/portfolio/handler"
	"leasing_portal_backend/internal/portfolio/repository"
	"leasing_portal_backend/internal/portfolio/service"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the portfolio bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the portfolio module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "portfolio"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterCompanyRoutes(ctx.Protected.Group("/company"))
	m.handler.RegisterPropertyRoutes(ctx.Protected.Group("/properties"))
	m.handler.RegisterChatbotRoutes(ctx.Protected.Group("/chatbots"))
	m.handler.RegisterFAQRoutes(ctx.Protected.Group("/faqs"))
}

var _ apphttp.Module = (*Module)(nil)
