// Package notifications provides the lead notification bounded context:
// listing, the delivery status machine, the unread-count cache and the
// bridge from committed fan-out rows to the async delivery queue.
package notifications

import (
	"context"

	"leasing_portal_backend/internal/events"
	apphttp "leasing_portal_backend/internal/http"
	"leasing_portal_backend/internal/notifications/cache"
	"leasing_portal_backend/internal/notifications/handler"
	"leasing_portal_backend/internal/notifications/repository"
	"leasing_portal_backend/internal/notifications/service"
	"leasing_portal_backend/platform/logger"
	"leasing_portal_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the notifications bounded context implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates the notifications module and subscribes it to the
// qualifying-transition events so committed notification rows get queued
// for delivery. redisClient and enqueuer may be nil; delivery then stays
// manual and unread counts hit the database.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, redisClient *redis.Client, enqueuer service.DeliveryEnqueuer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	var unread *cache.Counter
	if redisClient != nil {
		unread = cache.NewCounter(redisClient)
	}

	svc := service.New(repo, unread, enqueuer, eventBus, log)

	enqueue := func(ctx context.Context, notificationIDs []uuid.UUID) {
		svc.EnqueueDelivery(ctx, notificationIDs)
	}
	eventBus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.LeadQualified); ok {
			enqueue(ctx, e.NotificationIDs)
		}
		return nil
	}))
	eventBus.Subscribe(events.TourScheduled{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.TourScheduled); ok {
			enqueue(ctx, e.NotificationIDs)
		}
		return nil
	}))

	return &Module{
		handler:    handler.New(svc, val),
		service:    svc,
		repository: repo,
	}
}

// Repository exposes the notification store for the delivery worker.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

func (m *Module) Name() string {
	return "notifications"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
	m.handler.RegisterDashboardRoutes(ctx.Protected.Group("/dashboard"))
}
