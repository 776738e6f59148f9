package repository

import (
	"context"
	"errors"

	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	opAssign          = "managers.repository.assign"
	opEndAssignment   = "managers.repository.end_assignment"
	opListAssignments = "managers.repository.list_assignments"
)

const assignmentColumns = `id, property_id, property_manager_id, is_primary, start_date, end_date, permissions, notification_preferences, created_at, updated_at`

// Assign links a manager to a property inside one transaction. The
// property row is locked first so concurrent Assign calls for the same
// property serialize; that lock is what keeps the single-active-primary
// invariant procedural rather than schema-enforced.
func (r *Repository) Assign(ctx context.Context, tctx tenancy.Context, p AssignParams) (Assignment, error) {
	if r == nil || r.pool == nil {
		return Assignment{}, apperr.Internal(errRepoNotConfigured).WithOp(opAssign)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Assignment{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, translate(opAssign, err)
	}
	defer tx.Rollback(ctx)

	propertyCompany, err := lockProperty(ctx, tx, tctx, p.PropertyID)
	if err != nil {
		return Assignment{}, err
	}

	var managerCompany *uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT company_id FROM lp_property_manager WHERE id = $1`,
		p.PropertyManagerID).Scan(&managerCompany)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, apperr.NotFound("manager not found").WithOp(opAssign)
	}
	if err != nil {
		return Assignment{}, translate(opAssign, err)
	}
	if managerCompany == nil || *managerCompany != propertyCompany {
		return Assignment{}, apperr.CrossTenant("manager and property belong to different companies").WithOp(opAssign)
	}

	if p.IsPrimary {
		_, err = tx.Exec(ctx, `
			UPDATE lp_property_manager_assignment
			SET is_primary = FALSE, updated_at = now()
			WHERE property_id = $1
			  AND property_manager_id <> $2
			  AND is_primary
			  AND (end_date IS NULL OR end_date >= CURRENT_DATE)`,
			p.PropertyID, p.PropertyManagerID)
		if err != nil {
			return Assignment{}, translate(opAssign, err)
		}
	}

	// Upsert: an active row for the pair is updated in place, otherwise a
	// new row is inserted.
	row := tx.QueryRow(ctx, `
		UPDATE lp_property_manager_assignment SET
			is_primary               = $3,
			start_date               = $4,
			end_date                 = $5,
			permissions              = $6,
			notification_preferences = $7,
			updated_at               = now()
		WHERE property_id = $1
		  AND property_manager_id = $2
		  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
		RETURNING `+assignmentColumns,
		p.PropertyID, p.PropertyManagerID, p.IsPrimary, p.StartDate, p.EndDate,
		p.Permissions, p.NotificationPreferences)

	assignment, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		row = tx.QueryRow(ctx, `
			INSERT INTO lp_property_manager_assignment
				(property_id, property_manager_id, is_primary, start_date, end_date, permissions, notification_preferences)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+assignmentColumns,
			p.PropertyID, p.PropertyManagerID, p.IsPrimary, p.StartDate, p.EndDate,
			p.Permissions, p.NotificationPreferences)
		assignment, err = scanAssignment(row)
	}
	if err != nil {
		return Assignment{}, translate(opAssign, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, translate(opAssign, err)
	}
	return assignment, nil
}

// EndAssignment closes an assignment by stamping its end date with today.
func (r *Repository) EndAssignment(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Assignment, error) {
	if r == nil || r.pool == nil {
		return Assignment{}, apperr.Internal(errRepoNotConfigured).WithOp(opEndAssignment)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Assignment{}, err
	}
	pred, err := tenancy.Filter(tenancy.EntityAssignment, tctx, 1)
	if err != nil {
		return Assignment{}, err
	}

	args := append([]any{id}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_property_manager_assignment SET
			end_date   = CURRENT_DATE,
			is_primary = FALSE,
			updated_at = now()
		WHERE id = $1 AND `+pred.SQL+`
		RETURNING `+assignmentColumns,
		args...)

	assignment, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, apperr.NotFound("assignment not found").WithOp(opEndAssignment)
	}
	if err != nil {
		return Assignment{}, translate(opEndAssignment, err)
	}
	return assignment, nil
}

// ListAssignments returns assignments visible to the caller, optionally
// narrowed to one property, active rows first.
func (r *Repository) ListAssignments(ctx context.Context, tctx tenancy.Context, propertyID *uuid.UUID) ([]Assignment, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListAssignments)
	}
	pred, err := tenancy.Filter(tenancy.EntityAssignment, tctx, 1)
	if err != nil {
		return nil, err
	}

	args := append([]any{propertyID}, pred.Args...)
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM lp_property_manager_assignment
		WHERE ($1::uuid IS NULL OR property_id = $1) AND `+pred.SQL+`
		ORDER BY (end_date IS NULL OR end_date >= CURRENT_DATE) DESC, start_date DESC`,
		args...)
	if err != nil {
		return nil, translate(opListAssignments, err)
	}
	defer rows.Close()

	assignments := make([]Assignment, 0, 16)
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, translate(opListAssignments, err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(opListAssignments, err)
	}
	return assignments, nil
}

// lockProperty takes a row lock on the property after checking the caller
// can see it, and returns the property's company.
func lockProperty(ctx context.Context, tx pgx.Tx, tctx tenancy.Context, propertyID uuid.UUID) (uuid.UUID, error) {
	pred, err := tenancy.Filter(tenancy.EntityProperty, tctx, 1)
	if err != nil {
		return uuid.Nil, err
	}

	args := append([]any{propertyID}, pred.Args...)
	var companyID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT company_id FROM lp_property
		WHERE id = $1 AND `+pred.SQL+`
		FOR UPDATE OF lp_property`,
		args...).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, apperr.NotFound("property not found").WithOp(opAssign)
	}
	if err != nil {
		return uuid.Nil, translate(opAssign, err)
	}
	return companyID, nil
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(
		&a.ID, &a.PropertyID, &a.PropertyManagerID, &a.IsPrimary,
		&a.StartDate, &a.EndDate, &a.Permissions, &a.NotificationPreferences,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}
