// Package repository persists lead notifications. Fan-out rows are created
// by the conversations write; this package owns listing and the delivery
// status machine.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification statuses, in machine order.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusRead      = "read"
	StatusResponded = "responded"
)

const (
	opGet          = "notifications.repository.get"
	opList         = "notifications.repository.list"
	opUpdateStatus = "notifications.repository.update_status"
	opMarkSent     = "notifications.repository.mark_sent"
	opUnread       = "notifications.repository.unread_count"

	errRepoNotConfigured = "notifications repository not configured"
)

const notificationColumns = `id, conversation_id, property_manager_id, notification_type, status, sent_at, read_at, response_at, created_at`

// LeadNotification is one manager-addressed notification row.
type LeadNotification struct {
	ID                uuid.UUID  `json:"id"`
	ConversationID    uuid.UUID  `json:"conversationId"`
	PropertyManagerID *uuid.UUID `json:"propertyManagerId,omitempty"`
	NotificationType  string     `json:"notificationType"`
	Status            string     `json:"status"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	ReadAt            *time.Time `json:"readAt,omitempty"`
	ResponseAt        *time.Time `json:"responseAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ListFilter narrows notification listings.
type ListFilter struct {
	Status           *string
	NotificationType *string
	Limit            int
	Offset           int
}

// StatusUpdate advances a notification through the status machine.
// Timestamps are optional; omitted ones default to now at the transition.
type StatusUpdate struct {
	Status     string
	ReadAt     *time.Time
	ResponseAt *time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (LeadNotification, error) {
	if r == nil || r.pool == nil {
		return LeadNotification{}, apperr.Internal(errRepoNotConfigured).WithOp(opGet)
	}
	pred, err := tenancy.Filter(tenancy.EntityNotification, tctx, 1)
	if err != nil {
		return LeadNotification{}, err
	}

	args := append([]any{id}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM lp_lead_notification
		WHERE id = $1 AND `+pred.SQL,
		args...)

	notification, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadNotification{}, apperr.NotFound("notification not found").WithOp(opGet)
	}
	if err != nil {
		return LeadNotification{}, translate(opGet, err)
	}
	return notification, nil
}

// List returns the caller's notifications newest-first. Pagination is
// limit/offset so interrupted consumers can restart from where they left.
func (r *Repository) List(ctx context.Context, tctx tenancy.Context, filter ListFilter) ([]LeadNotification, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	pred, err := tenancy.Filter(tenancy.EntityNotification, tctx, 2)
	if err != nil {
		return nil, 0, err
	}

	where := `($1::varchar IS NULL OR status = $1)
	  AND ($2::varchar IS NULL OR notification_type = $2)
	  AND ` + pred.SQL
	args := append([]any{filter.Status, filter.NotificationType}, pred.Args...)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lp_lead_notification WHERE `+where,
		args...).Scan(&total); err != nil {
		return nil, 0, translate(opList, err)
	}

	pagedArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM lp_lead_notification
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`,
		notificationColumns, where, len(args)+1, len(args)+2),
		pagedArgs...)
	if err != nil {
		return nil, 0, translate(opList, err)
	}
	defer rows.Close()

	notifications := make([]LeadNotification, 0, filter.Limit)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, 0, translate(opList, err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(opList, err)
	}
	return notifications, total, nil
}

// UpdateStatus advances the status machine pending → sent → read →
// responded. Timestamps are forward-only (sent_at ≤ read_at ≤ response_at);
// both status rewinds and timestamp rewinds are refused against the stored
// row and surface as InvalidRange.
func (r *Repository) UpdateStatus(ctx context.Context, tctx tenancy.Context, id uuid.UUID, update StatusUpdate) (LeadNotification, error) {
	if r == nil || r.pool == nil {
		return LeadNotification{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdateStatus)
	}
	if err := tctx.RequireWrite(); err != nil {
		return LeadNotification{}, err
	}
	rank, ok := statusRank(update.Status)
	if !ok {
		return LeadNotification{}, apperr.Validation("unknown notification status").WithOp(opUpdateStatus)
	}
	pred, err := tenancy.Filter(tenancy.EntityNotification, tctx, 5)
	if err != nil {
		return LeadNotification{}, err
	}

	// Existence is checked first so a rewind on a visible row reports
	// InvalidRange instead of NotFound.
	current, err := r.Get(ctx, tctx, id)
	if err != nil {
		return LeadNotification{}, err
	}
	if err := checkTransition(current, update, rank); err != nil {
		return LeadNotification{}, err
	}

	// The WHERE clause repeats the forward-only checks against the stored
	// row as the backstop for writes racing between the Get and the UPDATE.
	args := append([]any{id, update.Status, rank, update.ReadAt, update.ResponseAt}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_lead_notification SET
			status      = $2,
			sent_at     = CASE WHEN $2 IN ('sent', 'read', 'responded') THEN COALESCE(sent_at, now()) ELSE sent_at END,
			read_at     = CASE WHEN $2 IN ('read', 'responded') THEN COALESCE($4, read_at, now()) ELSE read_at END,
			response_at = CASE WHEN $2 = 'responded' THEN COALESCE($5, response_at, now()) ELSE response_at END
		WHERE id = $1
		  AND `+statusRankSQL+` <= $3
		  AND ($4::timestamptz IS NULL OR sent_at IS NULL OR $4 >= sent_at)
		  AND ($4::timestamptz IS NULL OR read_at IS NULL OR $4 >= read_at)
		  AND ($5::timestamptz IS NULL OR (($4::timestamptz IS NULL OR $5 >= $4) AND (read_at IS NULL OR $5 >= read_at)))
		  AND ($5::timestamptz IS NULL OR response_at IS NULL OR $5 >= response_at)
		  AND `+pred.SQL+`
		RETURNING `+notificationColumns,
		args...)

	notification, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadNotification{}, apperr.InvalidRange("status or timestamps would move backwards").WithOp(opUpdateStatus)
	}
	if err != nil {
		return LeadNotification{}, translate(opUpdateStatus, err)
	}
	return notification, nil
}

// MarkSent flips a pending notification to sent. Called by the delivery
// worker; already-sent rows are left untouched so redelivered tasks are
// harmless.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkSent)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE lp_lead_notification SET
			status  = 'sent',
			sent_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id)
	if err != nil {
		return translate(opMarkSent, err)
	}
	return nil
}

// GetForDelivery loads a notification with the context the delivery email
// needs, without a tenant filter. Only the worker calls this.
func (r *Repository) GetForDelivery(ctx context.Context, id uuid.UUID) (DeliveryView, error) {
	if r == nil || r.pool == nil {
		return DeliveryView{}, apperr.Internal(errRepoNotConfigured).WithOp(opGet)
	}

	var v DeliveryView
	err := r.pool.QueryRow(ctx, `
		SELECT n.id, n.notification_type, n.status,
		       m.email, m.first_name,
		       p.name, c.lead_score
		FROM lp_lead_notification n
		JOIN lp_property_manager m ON m.id = n.property_manager_id
		JOIN lp_conversation c ON c.id = n.conversation_id
		JOIN lp_chatbot cb ON cb.id = c.chatbot_id
		JOIN lp_property p ON p.id = cb.property_id
		WHERE n.id = $1`,
		id).Scan(&v.ID, &v.NotificationType, &v.Status, &v.ManagerEmail, &v.ManagerFirstName, &v.PropertyName, &v.LeadScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return DeliveryView{}, apperr.NotFound("notification not found").WithOp(opGet)
	}
	if err != nil {
		return DeliveryView{}, translate(opGet, err)
	}
	return v, nil
}

// UnreadCount counts the caller's not-yet-read notifications.
func (r *Repository) UnreadCount(ctx context.Context, tctx tenancy.Context) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opUnread)
	}
	pred, err := tenancy.Filter(tenancy.EntityNotification, tctx, 0)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM lp_lead_notification
		WHERE status IN ('pending', 'sent') AND `+pred.SQL,
		pred.Args...).Scan(&count); err != nil {
		return 0, translate(opUnread, err)
	}
	return count, nil
}

// DeliveryView is the denormalized row the delivery email is built from.
// LeadScore is nil until a score has been computed for the conversation.
type DeliveryView struct {
	ID               uuid.UUID
	NotificationType string
	Status           string
	ManagerEmail     string
	ManagerFirstName string
	PropertyName     string
	LeadScore        *int
}

const statusRankSQL = `(CASE status
	WHEN 'pending' THEN 0
	WHEN 'sent' THEN 1
	WHEN 'read' THEN 2
	WHEN 'responded' THEN 3
END)`

// checkTransition enforces the status machine against the stored row: the
// status never moves to a lower rank, and sent_at ≤ read_at ≤ response_at
// stays monotonic — a new timestamp may never fall before one already
// stored, including on a same-status re-update.
func checkTransition(current LeadNotification, update StatusUpdate, newRank int) error {
	const msg = "status or timestamps would move backwards"

	currentRank, ok := statusRank(current.Status)
	if ok && currentRank > newRank {
		return apperr.InvalidRange(msg).WithOp(opUpdateStatus)
	}

	if update.ReadAt != nil {
		if current.SentAt != nil && update.ReadAt.Before(*current.SentAt) {
			return apperr.InvalidRange(msg).WithOp(opUpdateStatus)
		}
		if current.ReadAt != nil && update.ReadAt.Before(*current.ReadAt) {
			return apperr.InvalidRange(msg).WithOp(opUpdateStatus)
		}
	}

	if update.ResponseAt != nil {
		if update.ReadAt != nil && update.ResponseAt.Before(*update.ReadAt) {
			return apperr.InvalidRange(msg).WithOp(opUpdateStatus)
		}
		if current.ReadAt != nil && update.ResponseAt.Before(*current.ReadAt) {
			return apperr.InvalidRange(msg).WithOp(opUpdateStatus)
		}
		if current.ResponseAt != nil && update.ResponseAt.Before(*current.ResponseAt) {
			return apperr.InvalidRange(msg).WithOp(opUpdateStatus)
		}
	}

	return nil
}

func statusRank(status string) (int, bool) {
	switch status {
	case StatusPending:
		return 0, true
	case StatusSent:
		return 1, true
	case StatusRead:
		return 2, true
	case StatusResponded:
		return 3, true
	}
	return 0, false
}

func scanNotification(row pgx.Row) (LeadNotification, error) {
	var n LeadNotification
	err := row.Scan(
		&n.ID, &n.ConversationID, &n.PropertyManagerID, &n.NotificationType,
		&n.Status, &n.SentAt, &n.ReadAt, &n.ResponseAt, &n.CreatedAt)
	return n, err
}

func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transient("statement timed out", err).WithOp(op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "57014":
			return apperr.Transient("storage contention, retry the operation", err).WithOp(op)
		case "23505":
			return apperr.Conflict("duplicate row").WithOp(op)
		case "23514":
			return apperr.InvalidRange(pgErr.ConstraintName).WithOp(op)
		}
	}

	return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("storage operation failed: %v", err), err).WithOp(op)
}
