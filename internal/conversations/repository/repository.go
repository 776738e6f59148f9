// Package repository implements conversation, lead and message storage on
// PostgreSQL. All tenant-scoped statements carry the predicate produced by
// the tenancy filter, so rows outside the caller's grants are simply not
// matched.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leasing_portal_backend/internal/conversations/lifecycle"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreateOrUpdate = "conversations.repository.create_or_update"
	opGet            = "conversations.repository.get"
	opList           = "conversations.repository.list"
	opPersistScore   = "conversations.repository.persist_score"

	errRepoNotConfigured = "conversations repository not configured"
)

const conversationColumns = `id, chatbot_id, lead_id, start_time, end_time, is_qualified, is_book_tour,
	tour_type, tour_datetime, ai_intent_summary, apartment_size_preference, move_in_date,
	price_range_min, price_range_max, occupants_count, has_pets, pet_details, desired_features,
	work_location, reason_for_moving, pre_qualified, source, status, lead_score, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ ConversationStore = (*Repository)(nil)

func (r *Repository) CreateOrUpdateConversation(ctx context.Context, tctx tenancy.Context, fields UpsertFields, lead *LeadFields) (WriteResult, error) {
	if r == nil || r.pool == nil {
		return WriteResult{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreateOrUpdate)
	}
	if err := tctx.RequireWrite(); err != nil {
		return WriteResult{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return WriteResult{}, translate(opCreateOrUpdate, err)
	}
	defer tx.Rollback(ctx)

	var result WriteResult

	if fields.ID == nil {
		result, err = r.createConversation(ctx, tx, tctx, fields, lead)
	} else {
		result, err = r.updateConversation(ctx, tx, tctx, fields)
	}
	if err != nil {
		return WriteResult{}, err
	}

	// Fan-out runs inside the same transaction as the status write; the
	// partial unique index absorbs duplicate attempts.
	if result.StatusChanged {
		notificationType := notificationTypeFor(result.Conversation.Status)
		if notificationType != "" {
			created, fanoutErr := r.fanOutNotifications(ctx, tx, result.Conversation.ID, result.PropertyID, notificationType)
			if fanoutErr != nil {
				return WriteResult{}, fanoutErr
			}
			result.Notifications = created
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return WriteResult{}, translate(opCreateOrUpdate, err)
	}

	return result, nil
}

func notificationTypeFor(status string) string {
	switch status {
	case lifecycle.StatusQualified:
		return lifecycle.NotificationNewQualifiedLead
	case lifecycle.StatusTourScheduled:
		return lifecycle.NotificationTourScheduled
	}
	return ""
}

// resolvePropertyForChatbot returns the chatbot's property when the caller
// may touch it: the company grant reaches every chatbot of the company, the
// manager grant reaches chatbots of actively assigned properties. A chatbot
// outside both grants is reported as absent.
func (r *Repository) resolvePropertyForChatbot(ctx context.Context, tx pgx.Tx, tctx tenancy.Context, chatbotID uuid.UUID) (uuid.UUID, error) {
	clauses := ""
	args := []any{chatbotID}
	if tctx.CompanyID != nil {
		args = append(args, *tctx.CompanyID)
		clauses = fmt.Sprintf("p.company_id = $%d", len(args))
	}
	if tctx.ManagerID != nil {
		args = append(args, *tctx.ManagerID)
		managerClause := fmt.Sprintf(`EXISTS (
			SELECT 1 FROM lp_property_manager_assignment ta
			WHERE ta.property_id = p.id AND ta.property_manager_id = $%d
			  AND (ta.end_date IS NULL OR ta.end_date >= CURRENT_DATE))`, len(args))
		if clauses != "" {
			clauses = clauses + " OR " + managerClause
		} else {
			clauses = managerClause
		}
	}
	if clauses == "" {
		return uuid.Nil, apperr.Unauthorized("no tenant grant in context").WithOp(opCreateOrUpdate)
	}

	var propertyID uuid.UUID
	err := tx.QueryRow(ctx, `
		SELECT p.id FROM lp_chatbot cb
		JOIN lp_property p ON p.id = cb.property_id
		WHERE cb.id = $1 AND (`+clauses+`)
	`, args...).Scan(&propertyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, apperr.NotFound("chatbot not found").WithOp(opCreateOrUpdate)
	}
	if err != nil {
		return uuid.Nil, translate(opCreateOrUpdate, err)
	}
	return propertyID, nil
}

func (r *Repository) createConversation(ctx context.Context, tx pgx.Tx, tctx tenancy.Context, fields UpsertFields, lead *LeadFields) (WriteResult, error) {
	if fields.ChatbotID == uuid.Nil {
		return WriteResult{}, apperr.Validation("chatbotId is required").WithOp(opCreateOrUpdate)
	}

	propertyID, err := r.resolvePropertyForChatbot(ctx, tx, tctx, fields.ChatbotID)
	if err != nil {
		return WriteResult{}, err
	}

	leadID := fields.LeadID
	if lead != nil {
		id, leadErr := r.upsertLead(ctx, tx, *lead)
		if leadErr != nil {
			return WriteResult{}, leadErr
		}
		leadID = &id
	}

	merged := Conversation{
		ChatbotID: fields.ChatbotID,
		LeadID:    leadID,
		StartTime: time.Now().UTC(),
		Status:    lifecycle.StatusNew,
	}
	if err := applyFields(&merged, fields); err != nil {
		return WriteResult{}, err
	}

	derived := lifecycle.Derive(lifecycle.Snapshot{}, lifecycle.Snapshot{
		Status:       merged.Status,
		PreQualified: merged.PreQualified,
		IsBookTour:   merged.IsBookTour,
	})
	merged.Status = derived.Status

	row := tx.QueryRow(ctx, `
		INSERT INTO lp_conversation (chatbot_id, lead_id, end_time, is_qualified, is_book_tour,
			tour_type, tour_datetime, ai_intent_summary, apartment_size_preference, move_in_date,
			price_range_min, price_range_max, occupants_count, has_pets, pet_details, desired_features,
			work_location, reason_for_moving, pre_qualified, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING `+conversationColumns,
		merged.ChatbotID, merged.LeadID, merged.EndTime, merged.IsQualified, merged.IsBookTour,
		merged.TourType, merged.TourDatetime, merged.AIIntentSummary, merged.ApartmentSizePreference, merged.MoveInDate,
		merged.PriceRangeMin, merged.PriceRangeMax, merged.OccupantsCount, merged.HasPets, merged.PetDetails, merged.DesiredFeatures,
		merged.WorkLocation, merged.ReasonForMoving, merged.PreQualified, merged.Source, merged.Status,
	)

	stored, err := scanConversation(row)
	if err != nil {
		return WriteResult{}, translate(opCreateOrUpdate, err)
	}

	return WriteResult{
		Conversation:   stored,
		PropertyID:     propertyID,
		StatusChanged:  derived.Changed,
		PreviousStatus: lifecycle.StatusNew,
	}, nil
}

func (r *Repository) updateConversation(ctx context.Context, tx pgx.Tx, tctx tenancy.Context, fields UpsertFields) (WriteResult, error) {
	pred, err := tenancy.Filter(tenancy.EntityConversation, tctx, 1)
	if err != nil {
		return WriteResult{}, err
	}

	// Re-read the prior row under lock inside the write transaction so the
	// status derivation cannot race a concurrent update.
	args := append([]any{*fields.ID}, pred.Args...)
	row := tx.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM lp_conversation
		WHERE id = $1 AND `+pred.SQL+`
		FOR UPDATE OF lp_conversation
	`, args...)

	prev, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return WriteResult{}, apperr.NotFound("conversation not found").WithOp(opCreateOrUpdate)
	}
	if err != nil {
		return WriteResult{}, translate(opCreateOrUpdate, err)
	}

	propertyID, err := r.resolvePropertyForChatbot(ctx, tx, tctx, prev.ChatbotID)
	if err != nil {
		return WriteResult{}, err
	}

	merged := prev
	if err := applyFields(&merged, fields); err != nil {
		return WriteResult{}, err
	}

	derived := lifecycle.Derive(
		lifecycle.Snapshot{Status: prev.Status, PreQualified: prev.PreQualified, IsBookTour: prev.IsBookTour},
		lifecycle.Snapshot{Status: merged.Status, PreQualified: merged.PreQualified, IsBookTour: merged.IsBookTour},
	)
	merged.Status = derived.Status

	row = tx.QueryRow(ctx, `
		UPDATE lp_conversation SET
			lead_id = $2, end_time = $3, is_qualified = $4, is_book_tour = $5,
			tour_type = $6, tour_datetime = $7, ai_intent_summary = $8, apartment_size_preference = $9,
			move_in_date = $10, price_range_min = $11, price_range_max = $12, occupants_count = $13,
			has_pets = $14, pet_details = $15, desired_features = $16, work_location = $17,
			reason_for_moving = $18, pre_qualified = $19, source = $20, status = $21, updated_at = now()
		WHERE id = $1
		RETURNING `+conversationColumns,
		merged.ID, merged.LeadID, merged.EndTime, merged.IsQualified, merged.IsBookTour,
		merged.TourType, merged.TourDatetime, merged.AIIntentSummary, merged.ApartmentSizePreference,
		merged.MoveInDate, merged.PriceRangeMin, merged.PriceRangeMax, merged.OccupantsCount,
		merged.HasPets, merged.PetDetails, merged.DesiredFeatures, merged.WorkLocation,
		merged.ReasonForMoving, merged.PreQualified, merged.Source, merged.Status,
	)

	stored, err := scanConversation(row)
	if err != nil {
		return WriteResult{}, translate(opCreateOrUpdate, err)
	}

	return WriteResult{
		Conversation:   stored,
		PropertyID:     propertyID,
		StatusChanged:  derived.Changed,
		PreviousStatus: prev.Status,
	}, nil
}

// fanOutNotifications creates one pending notification per actively
// assigned manager. ON CONFLICT DO NOTHING against the fan-out unique index
// makes re-entrant calls a silent no-op.
func (r *Repository) fanOutNotifications(ctx context.Context, tx pgx.Tx, conversationID, propertyID uuid.UUID, notificationType string) ([]CreatedNotification, error) {
	rows, err := tx.Query(ctx, `
		INSERT INTO lp_lead_notification (conversation_id, property_manager_id, notification_type, status)
		SELECT DISTINCT $1, a.property_manager_id, $2, 'pending'
		FROM lp_property_manager_assignment a
		WHERE a.property_id = $3
		  AND (a.end_date IS NULL OR a.end_date >= CURRENT_DATE)
		ON CONFLICT (conversation_id, property_manager_id, notification_type)
			WHERE property_manager_id IS NOT NULL
			DO NOTHING
		RETURNING id, property_manager_id
	`, conversationID, notificationType, propertyID)
	if err != nil {
		return nil, translate(opCreateOrUpdate, err)
	}
	defer rows.Close()

	var created []CreatedNotification
	for rows.Next() {
		n := CreatedNotification{Type: notificationType}
		if err := rows.Scan(&n.ID, &n.ManagerID); err != nil {
			return nil, translate(opCreateOrUpdate, err)
		}
		created = append(created, n)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(opCreateOrUpdate, err)
	}
	return created, nil
}

func (r *Repository) GetConversation(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Conversation, error) {
	if r == nil || r.pool == nil {
		return Conversation{}, apperr.Internal(errRepoNotConfigured).WithOp(opGet)
	}
	pred, err := tenancy.Filter(tenancy.EntityConversation, tctx, 1)
	if err != nil {
		return Conversation{}, err
	}

	args := append([]any{id}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM lp_conversation
		WHERE id = $1 AND `+pred.SQL,
		args...)

	conversation, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, apperr.NotFound("conversation not found").WithOp(opGet)
	}
	if err != nil {
		return Conversation{}, translate(opGet, err)
	}
	return conversation, nil
}

func (r *Repository) GetConversationWithLead(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Conversation, *Lead, error) {
	conversation, err := r.GetConversation(ctx, tctx, id)
	if err != nil {
		return Conversation{}, nil, err
	}
	if conversation.LeadID == nil {
		return conversation, nil, nil
	}

	var lead Lead
	err = r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, age, lead_source, created_at, updated_at
		FROM lp_lead WHERE id = $1
	`, *conversation.LeadID).Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&lead.Age, &lead.LeadSource, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return conversation, nil, nil
	}
	if err != nil {
		return Conversation{}, nil, translate(opGet, err)
	}
	return conversation, &lead, nil
}

func (r *Repository) ListConversations(ctx context.Context, tctx tenancy.Context, filter ListFilter) ([]Conversation, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}

	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if filter.ChatbotID != nil {
		args = append(args, *filter.ChatbotID)
		where += fmt.Sprintf(" AND chatbot_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	pred, err := tenancy.Filter(tenancy.EntityConversation, tctx, len(args))
	if err != nil {
		return nil, 0, err
	}
	args = append(args, pred.Args...)

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lp_conversation WHERE `+pred.SQL+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, translate(opList, err)
	}

	listArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT `+conversationColumns+`
		FROM lp_conversation
		WHERE `+pred.SQL+where+`
		ORDER BY start_time DESC
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2), listArgs...)
	if err != nil {
		return nil, 0, translate(opList, err)
	}
	defer rows.Close()

	items := make([]Conversation, 0, limit)
	for rows.Next() {
		conversation, scanErr := scanConversation(rows)
		if scanErr != nil {
			return nil, 0, translate(opList, scanErr)
		}
		items = append(items, conversation)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, translate(opList, rowsErr)
	}
	return items, total, nil
}

func (r *Repository) PersistScore(ctx context.Context, tctx tenancy.Context, id uuid.UUID, score int) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opPersistScore)
	}
	if score < 0 || score > 100 {
		return apperr.InvalidRange("lead score must be between 0 and 100").WithOp(opPersistScore)
	}
	pred, err := tenancy.Filter(tenancy.EntityConversation, tctx, 2)
	if err != nil {
		return err
	}

	args := append([]any{id, score}, pred.Args...)
	tag, err := r.pool.Exec(ctx, `
		UPDATE lp_conversation
		SET lead_score = $2, updated_at = now()
		WHERE id = $1 AND `+pred.SQL,
		args...)
	if err != nil {
		return translate(opPersistScore, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("conversation not found").WithOp(opPersistScore)
	}
	return nil
}

func scanConversation(row pgx.Row) (Conversation, error) {
	var c Conversation
	err := row.Scan(
		&c.ID, &c.ChatbotID, &c.LeadID, &c.StartTime, &c.EndTime, &c.IsQualified, &c.IsBookTour,
		&c.TourType, &c.TourDatetime, &c.AIIntentSummary, &c.ApartmentSizePreference, &c.MoveInDate,
		&c.PriceRangeMin, &c.PriceRangeMax, &c.OccupantsCount, &c.HasPets, &c.PetDetails, &c.DesiredFeatures,
		&c.WorkLocation, &c.ReasonForMoving, &c.PreQualified, &c.Source, &c.Status, &c.LeadScore,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// applyFields merges the non-nil upsert fields onto the row and validates
// the resulting ranges.
func applyFields(c *Conversation, fields UpsertFields) error {
	if fields.LeadID != nil {
		c.LeadID = fields.LeadID
	}
	if fields.EndTime != nil {
		c.EndTime = fields.EndTime
	}
	if fields.IsQualified != nil {
		c.IsQualified = *fields.IsQualified
	}
	if fields.IsBookTour != nil {
		c.IsBookTour = *fields.IsBookTour
	}
	if fields.TourType != nil {
		c.TourType = fields.TourType
	}
	if fields.TourDatetime != nil {
		c.TourDatetime = fields.TourDatetime
	}
	if fields.AIIntentSummary != nil {
		c.AIIntentSummary = fields.AIIntentSummary
	}
	if fields.ApartmentSizePreference != nil {
		c.ApartmentSizePreference = fields.ApartmentSizePreference
	}
	if fields.MoveInDate != nil {
		c.MoveInDate = fields.MoveInDate
	}
	if fields.PriceRangeMin != nil {
		c.PriceRangeMin = fields.PriceRangeMin
	}
	if fields.PriceRangeMax != nil {
		c.PriceRangeMax = fields.PriceRangeMax
	}
	if fields.OccupantsCount != nil {
		c.OccupantsCount = fields.OccupantsCount
	}
	if fields.HasPets != nil {
		c.HasPets = fields.HasPets
	}
	if fields.PetDetails != nil {
		c.PetDetails = fields.PetDetails
	}
	if fields.DesiredFeatures != nil {
		c.DesiredFeatures = fields.DesiredFeatures
	}
	if fields.WorkLocation != nil {
		c.WorkLocation = fields.WorkLocation
	}
	if fields.ReasonForMoving != nil {
		c.ReasonForMoving = fields.ReasonForMoving
	}
	if fields.PreQualified != nil {
		c.PreQualified = *fields.PreQualified
	}
	if fields.Source != nil {
		c.Source = fields.Source
	}
	if fields.Status != nil {
		if !lifecycle.ValidStatus(*fields.Status) {
			return apperr.Validation(fmt.Sprintf("unknown status %q", *fields.Status))
		}
		c.Status = *fields.Status
	}

	if c.EndTime != nil && !c.EndTime.After(c.StartTime) {
		return apperr.InvalidRange("endTime must be after startTime")
	}
	if c.PriceRangeMin != nil && c.PriceRangeMax != nil && *c.PriceRangeMax < *c.PriceRangeMin {
		return apperr.InvalidRange("priceRangeMax must be at least priceRangeMin")
	}
	if c.OccupantsCount != nil && *c.OccupantsCount < 0 {
		return apperr.InvalidRange("occupantsCount cannot be negative")
	}
	return nil
}
