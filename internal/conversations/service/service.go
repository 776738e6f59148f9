// Package service orchestrates conversation writes: the tenant-filtered
// storage call, the lifecycle derivation it performs, and the post-commit
// event publication that drives notification delivery.
package service

import (
	"context"
	"encoding/json"

	"leasing_portal_backend/internal/conversations/lifecycle"
	"leasing_portal_backend/internal/conversations/repository"
	"leasing_portal_backend/internal/conversations/scoring"
	"leasing_portal_backend/internal/events"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	store repository.ConversationStore
	bus   events.Bus
	log   *logger.Logger
}

func New(store repository.ConversationStore, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// CreateOrUpdate applies a conversation write. The storage layer runs the
// access filter, the status derivation and the notification fan-out in one
// transaction; after commit the qualifying transition is published on the
// event bus so the delivery worker picks up the new notification rows.
func (s *Service) CreateOrUpdate(ctx context.Context, tctx tenancy.Context, fields repository.UpsertFields, lead *repository.LeadFields) (repository.Conversation, error) {
	result, err := s.store.CreateOrUpdateConversation(ctx, tctx, fields, lead)
	if err != nil {
		return repository.Conversation{}, err
	}

	if result.StatusChanged && s.log != nil {
		s.log.LeadTransition(result.Conversation.ID.String(), result.PreviousStatus, result.Conversation.Status)
	}

	if len(result.Notifications) > 0 {
		if s.log != nil {
			s.log.NotificationFanout(result.Conversation.ID.String(), result.Notifications[0].Type, len(result.Notifications))
		}
		s.publishTransition(ctx, result)
	}

	return result.Conversation, nil
}

func (s *Service) publishTransition(ctx context.Context, result repository.WriteResult) {
	if s.bus == nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(result.Notifications))
	for _, n := range result.Notifications {
		ids = append(ids, n.ID)
	}

	switch result.Conversation.Status {
	case lifecycle.StatusQualified:
		s.bus.Publish(ctx, events.LeadQualified{
			BaseEvent:       events.NewBaseEvent(),
			ConversationID:  result.Conversation.ID,
			PropertyID:      result.PropertyID,
			NotificationIDs: ids,
		})
	case lifecycle.StatusTourScheduled:
		s.bus.Publish(ctx, events.TourScheduled{
			BaseEvent:       events.NewBaseEvent(),
			ConversationID:  result.Conversation.ID,
			PropertyID:      result.PropertyID,
			NotificationIDs: ids,
		})
	}
}

// Get returns one visible conversation.
func (s *Service) Get(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (repository.Conversation, error) {
	return s.store.GetConversation(ctx, tctx, id)
}

// List returns visible conversations, newest first.
func (s *Service) List(ctx context.Context, tctx tenancy.Context, filter repository.ListFilter) ([]repository.Conversation, int, error) {
	return s.store.ListConversations(ctx, tctx, filter)
}

// RecomputeScore recalculates and persists the lead score. The computation
// is pure; persisting an unchanged score is a valid write, not an error, so
// the operation is idempotent.
func (s *Service) RecomputeScore(ctx context.Context, tctx tenancy.Context, conversationID uuid.UUID) (int, error) {
	conversation, lead, err := s.store.GetConversationWithLead(ctx, tctx, conversationID)
	if err != nil {
		return 0, err
	}

	in := scoring.Input{
		IsQualified: conversation.IsQualified,
		IsBookTour:  conversation.IsBookTour,
		MoveInDate:  conversation.MoveInDate,
		PriceMin:    conversation.PriceRangeMin,
		PriceMax:    conversation.PriceRangeMax,
	}
	if lead != nil {
		in.HasEmail = lead.Email != nil && *lead.Email != ""
		in.HasPhone = lead.Phone != nil && *lead.Phone != ""
	}

	score := scoring.Score(in)
	if err := s.store.PersistScore(ctx, tctx, conversationID, score); err != nil {
		return 0, err
	}
	return score, nil
}

// AppendMessage records one message on a visible conversation.
func (s *Service) AppendMessage(ctx context.Context, tctx tenancy.Context, p repository.MessageParams) (repository.Message, error) {
	return s.store.AppendMessage(ctx, tctx, p)
}

// ListMessages returns a conversation's messages in order.
func (s *Service) ListMessages(ctx context.Context, tctx tenancy.Context, conversationID uuid.UUID, limit, offset int) ([]repository.Message, int, error) {
	return s.store.ListMessages(ctx, tctx, conversationID, limit, offset)
}

// AnnotateMessage attaches metadata to an existing message.
func (s *Service) AnnotateMessage(ctx context.Context, tctx tenancy.Context, messageID uuid.UUID, metadata json.RawMessage) error {
	return s.store.AnnotateMessage(ctx, tctx, messageID, metadata)
}
