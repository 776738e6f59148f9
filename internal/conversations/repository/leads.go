package repository

import (
	"context"
	"errors"

	"leasing_portal_backend/platform/apperr"
	"leasing_portal_backend/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const opUpsertLead = "conversations.repository.upsert_lead"

// upsertLead creates or refreshes the lead row for a conversation write.
// Leads with an email are deduplicated on it; a lead known only by phone is
// matched on the normalized phone. Fully anonymous leads always insert.
func (r *Repository) upsertLead(ctx context.Context, tx pgx.Tx, fields LeadFields) (uuid.UUID, error) {
	if fields.FirstName == "" || fields.LastName == "" {
		return uuid.Nil, apperr.Validation("lead firstName and lastName are required").WithOp(opUpsertLead)
	}
	if fields.Age != nil && *fields.Age < 0 {
		return uuid.Nil, apperr.InvalidRange("lead age cannot be negative").WithOp(opUpsertLead)
	}

	if fields.Phone != nil {
		normalized := phone.NormalizeE164(*fields.Phone)
		fields.Phone = &normalized
	}

	if fields.Email != nil {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO lp_lead (first_name, last_name, email, phone, age, lead_source)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				phone = COALESCE(EXCLUDED.phone, lp_lead.phone),
				age = COALESCE(EXCLUDED.age, lp_lead.age),
				updated_at = now()
			RETURNING id
		`, fields.FirstName, fields.LastName, fields.Email, fields.Phone, fields.Age, fields.LeadSource).Scan(&id)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return uuid.Nil, apperr.Conflict("lead phone already belongs to another lead").WithOp(opUpsertLead)
			}
			return uuid.Nil, translate(opUpsertLead, err)
		}
		return id, nil
	}

	if fields.Phone != nil {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO lp_lead (first_name, last_name, phone, age, lead_source)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (phone) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				age = COALESCE(EXCLUDED.age, lp_lead.age),
				updated_at = now()
			RETURNING id
		`, fields.FirstName, fields.LastName, fields.Phone, fields.Age, fields.LeadSource).Scan(&id)
		if err != nil {
			return uuid.Nil, translate(opUpsertLead, err)
		}
		return id, nil
	}

	// Anonymous lead: nothing to deduplicate on.
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO lp_lead (first_name, last_name, age, lead_source)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, fields.FirstName, fields.LastName, fields.Age, fields.LeadSource).Scan(&id)
	if err != nil {
		return uuid.Nil, translate(opUpsertLead, err)
	}
	return id, nil
}
