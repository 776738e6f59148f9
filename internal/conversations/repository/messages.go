package repository

import (
	"context"
	"encoding/json"
	"errors"

	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	opAppendMessage   = "conversations.repository.append_message"
	opListMessages    = "conversations.repository.list_messages"
	opAnnotateMessage = "conversations.repository.annotate_message"
)

const messageColumns = `id, conversation_id, sender_type, message_text, timestamp, message_type, metadata, created_at`

// AppendMessage writes one message to a visible conversation. Messages are
// immutable after this point except for the metadata annotation.
func (r *Repository) AppendMessage(ctx context.Context, tctx tenancy.Context, p MessageParams) (Message, error) {
	if r == nil || r.pool == nil {
		return Message{}, apperr.Internal(errRepoNotConfigured).WithOp(opAppendMessage)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Message{}, err
	}
	if p.ConversationID == uuid.Nil {
		return Message{}, apperr.Validation("conversationId is required").WithOp(opAppendMessage)
	}
	if p.SenderType != "user" && p.SenderType != "bot" {
		return Message{}, apperr.Validation("senderType must be user or bot").WithOp(opAppendMessage)
	}
	if p.MessageText == "" {
		return Message{}, apperr.Validation("messageText is required").WithOp(opAppendMessage)
	}

	pred, err := tenancy.Filter(tenancy.EntityConversation, tctx, 5)
	if err != nil {
		return Message{}, err
	}

	// Insert only when the parent conversation is inside the caller's
	// grants; otherwise zero rows, reported as NotFound.
	args := append([]any{p.ConversationID, p.SenderType, p.MessageText, p.MessageType, p.Metadata}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lp_message (conversation_id, sender_type, message_text, message_type, metadata)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (
			SELECT 1 FROM lp_conversation
			WHERE lp_conversation.id = $1 AND `+pred.SQL+`
		)
		RETURNING `+messageColumns,
		args...)

	var m Message
	err = row.Scan(&m.ID, &m.ConversationID, &m.SenderType, &m.MessageText, &m.Timestamp, &m.MessageType, &m.Metadata, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, apperr.NotFound("conversation not found").WithOp(opAppendMessage)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Message{}, apperr.NotFound("conversation not found").WithOp(opAppendMessage)
		}
		return Message{}, translate(opAppendMessage, err)
	}
	return m, nil
}

// ListMessages returns a conversation's messages in timestamp order.
func (r *Repository) ListMessages(ctx context.Context, tctx tenancy.Context, conversationID uuid.UUID, limit, offset int) ([]Message, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opListMessages)
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	pred, err := tenancy.Filter(tenancy.EntityConversation, tctx, 1)
	if err != nil {
		return nil, 0, err
	}

	// The parent conversation must be visible; absent and foreign rows are
	// indistinguishable.
	args := append([]any{conversationID}, pred.Args...)
	var visible bool
	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM lp_conversation WHERE id = $1 AND `+pred.SQL+`)
	`, args...).Scan(&visible)
	if err != nil {
		return nil, 0, translate(opListMessages, err)
	}
	if !visible {
		return nil, 0, apperr.NotFound("conversation not found").WithOp(opListMessages)
	}

	var total int
	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lp_message WHERE conversation_id = $1`, conversationID).Scan(&total)
	if err != nil {
		return nil, 0, translate(opListMessages, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM lp_message
		WHERE conversation_id = $1
		ORDER BY timestamp ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, translate(opListMessages, err)
	}
	defer rows.Close()

	items := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if scanErr := rows.Scan(&m.ID, &m.ConversationID, &m.SenderType, &m.MessageText, &m.Timestamp, &m.MessageType, &m.Metadata, &m.CreatedAt); scanErr != nil {
			return nil, 0, translate(opListMessages, scanErr)
		}
		items = append(items, m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, translate(opListMessages, rowsErr)
	}
	return items, total, nil
}

// AnnotateMessage replaces a message's metadata. The message body stays
// immutable.
func (r *Repository) AnnotateMessage(ctx context.Context, tctx tenancy.Context, messageID uuid.UUID, metadata json.RawMessage) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opAnnotateMessage)
	}
	if err := tctx.RequireWrite(); err != nil {
		return err
	}

	pred, err := tenancy.Filter(tenancy.EntityMessage, tctx, 2)
	if err != nil {
		return err
	}

	args := append([]any{messageID, metadata}, pred.Args...)
	tag, err := r.pool.Exec(ctx, `
		UPDATE lp_message SET metadata = $2
		WHERE id = $1 AND `+pred.SQL,
		args...)
	if err != nil {
		return translate(opAnnotateMessage, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("message not found").WithOp(opAnnotateMessage)
	}
	return nil
}
