package repository

import (
	"context"
	"encoding/json"

	"leasing_portal_backend/internal/tenancy"

	"github.com/google/uuid"
)

// ListFilter narrows conversation listings.
type ListFilter struct {
	ChatbotID *uuid.UUID
	Status    *string
	Limit     int
	Offset    int
}

// MessageParams carries a message append.
type MessageParams struct {
	ConversationID uuid.UUID
	SenderType     string
	MessageText    string
	MessageType    *string
	Metadata       json.RawMessage
}

// ConversationStore is the storage contract the conversations service
// depends on. Every method evaluates the caller's tenancy predicate; rows
// outside the caller's grants behave as absent.
type ConversationStore interface {
	// CreateOrUpdateConversation applies the write, the lifecycle
	// derivation and the notification fan-out in one transaction.
	CreateOrUpdateConversation(ctx context.Context, tctx tenancy.Context, fields UpsertFields, lead *LeadFields) (WriteResult, error)

	GetConversation(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Conversation, error)
	GetConversationWithLead(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Conversation, *Lead, error)
	ListConversations(ctx context.Context, tctx tenancy.Context, filter ListFilter) ([]Conversation, int, error)

	// PersistScore writes a computed lead score with an updated_at bump.
	// Re-writing an unchanged score succeeds.
	PersistScore(ctx context.Context, tctx tenancy.Context, id uuid.UUID, score int) error

	AppendMessage(ctx context.Context, tctx tenancy.Context, p MessageParams) (Message, error)
	ListMessages(ctx context.Context, tctx tenancy.Context, conversationID uuid.UUID, limit, offset int) ([]Message, int, error)
	AnnotateMessage(ctx context.Context, tctx tenancy.Context, messageID uuid.UUID, metadata json.RawMessage) error
}
