package service

import (
	"context"
	"testing"

	"leasing_portal_backend/internal/conversations/lifecycle"
	"leasing_portal_backend/internal/conversations/repository"
	"leasing_portal_backend/internal/events"
	"leasing_portal_backend/internal/tenancy"

	"github.com/google/uuid"
)

type fakeStore struct {
	repository.ConversationStore

	writeResult  repository.WriteResult
	conversation repository.Conversation
	lead         *repository.Lead

	persistedScores []int
}

func (f *fakeStore) CreateOrUpdateConversation(_ context.Context, _ tenancy.Context, _ repository.UpsertFields, _ *repository.LeadFields) (repository.WriteResult, error) {
	return f.writeResult, nil
}

func (f *fakeStore) GetConversationWithLead(_ context.Context, _ tenancy.Context, _ uuid.UUID) (repository.Conversation, *repository.Lead, error) {
	return f.conversation, f.lead, nil
}

func (f *fakeStore) PersistScore(_ context.Context, _ tenancy.Context, _ uuid.UUID, score int) error {
	f.persistedScores = append(f.persistedScores, score)
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func managerCtx() tenancy.Context {
	return tenancy.NewIdentity(uuid.New(), uuid.New(), tenancy.AccessWrite)
}

func TestCreateOrUpdatePublishesQualifyingTransition(t *testing.T) {
	notificationID := uuid.New()
	store := &fakeStore{
		writeResult: repository.WriteResult{
			Conversation:   repository.Conversation{ID: uuid.New(), Status: lifecycle.StatusQualified},
			PropertyID:     uuid.New(),
			StatusChanged:  true,
			PreviousStatus: lifecycle.StatusNew,
			Notifications: []repository.CreatedNotification{
				{ID: notificationID, ManagerID: uuid.New(), Type: lifecycle.NotificationNewQualifiedLead},
			},
		},
	}
	bus := &recordingBus{}
	svc := New(store, bus, nil)

	_, err := svc.CreateOrUpdate(context.Background(), managerCtx(), repository.UpsertFields{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	event, ok := bus.published[0].(events.LeadQualified)
	if !ok {
		t.Fatalf("expected LeadQualified, got %T", bus.published[0])
	}
	if len(event.NotificationIDs) != 1 || event.NotificationIDs[0] != notificationID {
		t.Fatalf("expected notification id %s carried on the event, got %v", notificationID, event.NotificationIDs)
	}
}

func TestCreateOrUpdateIdempotentWritePublishesNothing(t *testing.T) {
	store := &fakeStore{
		writeResult: repository.WriteResult{
			Conversation:   repository.Conversation{ID: uuid.New(), Status: lifecycle.StatusQualified},
			StatusChanged:  false,
			PreviousStatus: lifecycle.StatusQualified,
		},
	}
	bus := &recordingBus{}
	svc := New(store, bus, nil)

	_, err := svc.CreateOrUpdate(context.Background(), managerCtx(), repository.UpsertFields{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("idempotent write must not publish, got %d events", len(bus.published))
	}
}

func TestCreateOrUpdateTourTransitionPublishesTourScheduled(t *testing.T) {
	store := &fakeStore{
		writeResult: repository.WriteResult{
			Conversation:   repository.Conversation{ID: uuid.New(), Status: lifecycle.StatusTourScheduled},
			StatusChanged:  true,
			PreviousStatus: lifecycle.StatusQualified,
			Notifications: []repository.CreatedNotification{
				{ID: uuid.New(), ManagerID: uuid.New(), Type: lifecycle.NotificationTourScheduled},
			},
		},
	}
	bus := &recordingBus{}
	svc := New(store, bus, nil)

	if _, err := svc.CreateOrUpdate(context.Background(), managerCtx(), repository.UpsertFields{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.TourScheduled); !ok {
		t.Fatalf("expected TourScheduled, got %T", bus.published[0])
	}
}

func TestRecomputeScoreUsesLeadContactInfo(t *testing.T) {
	email := "lead@example.com"
	phone := "+12024561111"
	store := &fakeStore{
		conversation: repository.Conversation{ID: uuid.New(), IsQualified: true},
		lead:         &repository.Lead{Email: &email, Phone: &phone},
	}
	svc := New(store, &recordingBus{}, nil)

	score, err := svc.RecomputeScore(context.Background(), managerCtx(), store.conversation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// base 10 + qualified 30 + full contact 15
	if score != 55 {
		t.Fatalf("expected score 55, got %d", score)
	}
	if len(store.persistedScores) != 1 || store.persistedScores[0] != 55 {
		t.Fatalf("expected persisted score 55, got %v", store.persistedScores)
	}
}

func TestRecomputeScoreIsReentrant(t *testing.T) {
	store := &fakeStore{
		conversation: repository.Conversation{ID: uuid.New()},
	}
	svc := New(store, &recordingBus{}, nil)

	first, err := svc.RecomputeScore(context.Background(), managerCtx(), store.conversation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RecomputeScore(context.Background(), managerCtx(), store.conversation.ID)
	if err != nil {
		t.Fatalf("second recompute must not fail: %v", err)
	}
	if first != second {
		t.Fatalf("recompute not stable: %d vs %d", first, second)
	}
	if len(store.persistedScores) != 2 {
		t.Fatalf("each recompute persists, got %d writes", len(store.persistedScores))
	}
}

var _ repository.ConversationStore = (*fakeStore)(nil)
