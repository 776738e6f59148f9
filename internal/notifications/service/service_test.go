package service

import (
	"context"
	"errors"
	"testing"

	"leasing_portal_backend/internal/events"
	"leasing_portal_backend/internal/notifications/cache"
	"leasing_portal_backend/internal/notifications/repository"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	NotificationStore

	unreadCalls int
	unreadCount int64
	updated     repository.LeadNotification
}

func (f *fakeStore) UpdateStatus(_ context.Context, _ tenancy.Context, _ uuid.UUID, _ repository.StatusUpdate) (repository.LeadNotification, error) {
	return f.updated, nil
}

func (f *fakeStore) UnreadCount(_ context.Context, _ tenancy.Context) (int64, error) {
	f.unreadCalls++
	return f.unreadCount, nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

type fakeEnqueuer struct {
	enqueued []uuid.UUID
	failOn   *uuid.UUID
}

func (f *fakeEnqueuer) EnqueueNotificationDelivery(_ context.Context, id uuid.UUID) error {
	if f.failOn != nil && *f.failOn == id {
		return errors.New("queue unavailable")
	}
	f.enqueued = append(f.enqueued, id)
	return nil
}

func testCounter(t *testing.T) *cache.Counter {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewCounter(client)
}

func managerCtx(managerID uuid.UUID) tenancy.Context {
	return tenancy.NewIdentity(uuid.New(), managerID, tenancy.AccessWrite)
}

func TestUnreadCountCachesResult(t *testing.T) {
	store := &fakeStore{unreadCount: 6}
	svc := New(store, testCounter(t), nil, nil, logger.New("development"))
	tctx := managerCtx(uuid.New())

	for i := 0; i < 3; i++ {
		count, err := svc.UnreadCount(context.Background(), tctx)
		if err != nil {
			t.Fatalf("UnreadCount: %v", err)
		}
		if count != 6 {
			t.Fatalf("count = %d, want 6", count)
		}
	}

	if store.unreadCalls != 1 {
		t.Errorf("store hit %d times, want 1 (cache should serve repeats)", store.unreadCalls)
	}
}

func TestUpdateStatusInvalidatesUnreadCache(t *testing.T) {
	managerID := uuid.New()
	store := &fakeStore{
		unreadCount: 2,
		updated: repository.LeadNotification{
			ID:                uuid.New(),
			PropertyManagerID: &managerID,
			Status:            repository.StatusRead,
		},
	}
	svc := New(store, testCounter(t), nil, nil, logger.New("development"))
	tctx := managerCtx(managerID)

	if _, err := svc.UnreadCount(context.Background(), tctx); err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), tctx, store.updated.ID, repository.StatusUpdate{Status: repository.StatusRead}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	store.unreadCount = 1
	count, err := svc.UnreadCount(context.Background(), tctx)
	if err != nil {
		t.Fatalf("UnreadCount after update: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (stale cache served after invalidation)", count)
	}
	if store.unreadCalls != 2 {
		t.Errorf("store hit %d times, want 2", store.unreadCalls)
	}
}

func TestUpdateStatusPublishesStatusChange(t *testing.T) {
	managerID := uuid.New()
	store := &fakeStore{
		updated: repository.LeadNotification{
			ID:                uuid.New(),
			PropertyManagerID: &managerID,
			Status:            repository.StatusRead,
		},
	}
	bus := &fakeBus{}
	svc := New(store, testCounter(t), nil, bus, logger.New("development"))
	tctx := managerCtx(managerID)

	if _, err := svc.UpdateStatus(context.Background(), tctx, store.updated.ID, repository.StatusUpdate{Status: repository.StatusRead}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	event, ok := bus.published[0].(events.NotificationStatusChanged)
	if !ok {
		t.Fatalf("published %T, want NotificationStatusChanged", bus.published[0])
	}
	if event.NotificationID != store.updated.ID || event.ManagerID != managerID || event.Status != repository.StatusRead {
		t.Fatalf("event = %+v, want notification %s manager %s status read", event, store.updated.ID, managerID)
	}
}

func TestEnqueueDeliverySkipsFailures(t *testing.T) {
	failing := uuid.New()
	surviving := uuid.New()
	enqueuer := &fakeEnqueuer{failOn: &failing}
	svc := New(&fakeStore{}, nil, enqueuer, nil, logger.New("development"))

	svc.EnqueueDelivery(context.Background(), []uuid.UUID{failing, surviving})

	if len(enqueuer.enqueued) != 1 || enqueuer.enqueued[0] != surviving {
		t.Fatalf("enqueued = %v, want only %s", enqueuer.enqueued, surviving)
	}
}

func TestEnqueueDeliveryWithoutQueueIsNoOp(t *testing.T) {
	svc := New(&fakeStore{}, nil, nil, nil, logger.New("development"))
	svc.EnqueueDelivery(context.Background(), []uuid.UUID{uuid.New()})
}
