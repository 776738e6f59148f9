// Package service holds the notification listing, status and unread-count
// use cases, plus the fan-in point that hands committed notifications to
// the async delivery queue.
package service

import (
	"context"

	"leasing_portal_backend/internal/events"
	"leasing_portal_backend/internal/notifications/cache"
	"leasing_portal_backend/internal/notifications/repository"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// NotificationStore is the storage contract the service depends on.
type NotificationStore interface {
	Get(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (repository.LeadNotification, error)
	List(ctx context.Context, tctx tenancy.Context, filter repository.ListFilter) ([]repository.LeadNotification, int, error)
	UpdateStatus(ctx context.Context, tctx tenancy.Context, id uuid.UUID, update repository.StatusUpdate) (repository.LeadNotification, error)
	UnreadCount(ctx context.Context, tctx tenancy.Context) (int64, error)
}

// DeliveryEnqueuer queues a notification for asynchronous delivery.
type DeliveryEnqueuer interface {
	EnqueueNotificationDelivery(ctx context.Context, notificationID uuid.UUID) error
}

type Service struct {
	store    NotificationStore
	unread   *cache.Counter
	enqueuer DeliveryEnqueuer
	bus      events.Bus
	log      *logger.Logger

	// counts collapses concurrent unread recounts for the same manager
	// into a single database query on cache miss.
	counts singleflight.Group
}

func New(store NotificationStore, unread *cache.Counter, enqueuer DeliveryEnqueuer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, unread: unread, enqueuer: enqueuer, bus: bus, log: log}
}

func (s *Service) Get(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (repository.LeadNotification, error) {
	return s.store.Get(ctx, tctx, id)
}

func (s *Service) List(ctx context.Context, tctx tenancy.Context, filter repository.ListFilter) ([]repository.LeadNotification, int, error) {
	return s.store.List(ctx, tctx, filter)
}

// UpdateStatus advances the delivery status machine, drops the caller's
// cached unread count and announces the state change on the event bus.
func (s *Service) UpdateStatus(ctx context.Context, tctx tenancy.Context, id uuid.UUID, update repository.StatusUpdate) (repository.LeadNotification, error) {
	notification, err := s.store.UpdateStatus(ctx, tctx, id, update)
	if err != nil {
		return repository.LeadNotification{}, err
	}

	if notification.PropertyManagerID != nil {
		s.unread.Invalidate(ctx, *notification.PropertyManagerID)

		if s.bus != nil {
			s.bus.Publish(ctx, events.NotificationStatusChanged{
				BaseEvent:      events.NewBaseEvent(),
				NotificationID: notification.ID,
				ManagerID:      *notification.PropertyManagerID,
				Status:         notification.Status,
			})
		}
	}
	return notification, nil
}

// UnreadCount returns the caller's unread count, served from the cache when
// warm.
func (s *Service) UnreadCount(ctx context.Context, tctx tenancy.Context) (int64, error) {
	if tctx.ManagerID == nil {
		return s.store.UnreadCount(ctx, tctx)
	}

	managerID := *tctx.ManagerID
	if count, ok := s.unread.Get(ctx, managerID); ok {
		return count, nil
	}

	result, err, _ := s.counts.Do(managerID.String(), func() (any, error) {
		count, err := s.store.UnreadCount(ctx, tctx)
		if err != nil {
			return int64(0), err
		}
		s.unread.Set(ctx, managerID, count)
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// EnqueueDelivery hands committed notification rows to the delivery queue.
// Failures are logged and skipped: the rows stay pending and a later write
// or manual requeue picks them up, while the conversation write that
// produced them has already succeeded.
func (s *Service) EnqueueDelivery(ctx context.Context, notificationIDs []uuid.UUID) {
	if s.enqueuer == nil {
		return
	}

	for _, id := range notificationIDs {
		if err := s.enqueuer.EnqueueNotificationDelivery(ctx, id); err != nil {
			s.log.Error("failed to enqueue notification delivery", "notificationId", id, "error", err)
		}
	}
}
