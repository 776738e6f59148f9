// Package repository persists property managers and their property
// assignments. Every query carries the caller's tenancy predicate.
package repository

import (
	"context"
	"errors"
	"fmt"

	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate = "managers.repository.create"
	opGet    = "managers.repository.get"
	opList   = "managers.repository.list"
	opUpdate = "managers.repository.update"
	opDelete = "managers.repository.delete"

	errRepoNotConfigured = "managers repository not configured"
)

const managerColumns = `id, company_id, first_name, last_name, email, phone, role, access_level, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateManager inserts a manager under the caller's company. The caller
// needs the company-wide grant; assignment-scoped managers cannot create
// colleagues.
func (r *Repository) CreateManager(ctx context.Context, tctx tenancy.Context, p CreateManagerParams) (Manager, error) {
	if r == nil || r.pool == nil {
		return Manager{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Manager{}, err
	}
	if tctx.CompanyID == nil {
		return Manager{}, apperr.Forbidden("company-wide access required").WithOp(opCreate)
	}
	if p.CompanyID != nil && *p.CompanyID != *tctx.CompanyID {
		return Manager{}, apperr.CrossTenant("manager company does not match caller company").WithOp(opCreate)
	}

	companyID := tctx.CompanyID
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lp_property_manager
			(company_id, first_name, last_name, email, phone, role, access_level, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+managerColumns,
		companyID, p.FirstName, p.LastName, p.Email, p.Phone, p.Role, p.AccessLevel, p.PasswordHash)

	manager, err := scanManager(row)
	if err != nil {
		return Manager{}, translate(opCreate, err)
	}
	return manager, nil
}

func (r *Repository) GetManager(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Manager, error) {
	if r == nil || r.pool == nil {
		return Manager{}, apperr.Internal(errRepoNotConfigured).WithOp(opGet)
	}
	pred, err := tenancy.Filter(tenancy.EntityManager, tctx, 1)
	if err != nil {
		return Manager{}, err
	}

	args := append([]any{id}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		SELECT `+managerColumns+`
		FROM lp_property_manager
		WHERE id = $1 AND `+pred.SQL,
		args...)

	manager, err := scanManager(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Manager{}, apperr.NotFound("manager not found").WithOp(opGet)
	}
	if err != nil {
		return Manager{}, translate(opGet, err)
	}
	return manager, nil
}

func (r *Repository) ListManagers(ctx context.Context, tctx tenancy.Context, limit, offset int) ([]Manager, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	pred, err := tenancy.Filter(tenancy.EntityManager, tctx, 0)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lp_property_manager WHERE `+pred.SQL,
		pred.Args...).Scan(&total); err != nil {
		return nil, 0, translate(opList, err)
	}

	pagedArgs := append(append([]any{}, pred.Args...), limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM lp_property_manager
		WHERE %s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d`,
		managerColumns, pred.SQL, len(pred.Args)+1, len(pred.Args)+2),
		pagedArgs...)
	if err != nil {
		return nil, 0, translate(opList, err)
	}
	defer rows.Close()

	managers := make([]Manager, 0, limit)
	for rows.Next() {
		manager, err := scanManager(rows)
		if err != nil {
			return nil, 0, translate(opList, err)
		}
		managers = append(managers, manager)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(opList, err)
	}
	return managers, total, nil
}

func (r *Repository) UpdateManager(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p UpdateManagerParams) (Manager, error) {
	if r == nil || r.pool == nil {
		return Manager{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdate)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Manager{}, err
	}
	pred, err := tenancy.Filter(tenancy.EntityManager, tctx, 6)
	if err != nil {
		return Manager{}, err
	}

	args := append([]any{id, p.FirstName, p.LastName, p.Phone, p.Role, p.AccessLevel}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_property_manager SET
			first_name   = COALESCE($2, first_name),
			last_name    = COALESCE($3, last_name),
			phone        = COALESCE($4, phone),
			role         = COALESCE($5, role),
			access_level = COALESCE($6, access_level),
			updated_at   = now()
		WHERE id = $1 AND `+pred.SQL+`
		RETURNING `+managerColumns,
		args...)

	manager, err := scanManager(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Manager{}, apperr.NotFound("manager not found").WithOp(opUpdate)
	}
	if err != nil {
		return Manager{}, translate(opUpdate, err)
	}
	return manager, nil
}

// DeleteManager removes the manager row; assignments cascade.
func (r *Repository) DeleteManager(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}
	if err := tctx.RequireWrite(); err != nil {
		return err
	}
	if tctx.CompanyID == nil {
		return apperr.Forbidden("company-wide access required").WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM lp_property_manager
		WHERE id = $1 AND company_id = $2`,
		id, *tctx.CompanyID)
	if err != nil {
		return translate(opDelete, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("manager not found").WithOp(opDelete)
	}
	return nil
}

// GetByEmail loads a manager with the password hash for credential checks.
// Bypasses the tenancy filter: authentication happens before a tenant
// context exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Manager, string, error) {
	if r == nil || r.pool == nil {
		return Manager{}, "", apperr.Internal(errRepoNotConfigured).WithOp(opGet)
	}

	var (
		manager Manager
		hash    *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT `+managerColumns+`, password_hash
		FROM lp_property_manager
		WHERE email = $1`,
		email).Scan(
		&manager.ID, &manager.CompanyID, &manager.FirstName, &manager.LastName,
		&manager.Email, &manager.Phone, &manager.Role, &manager.AccessLevel,
		&manager.CreatedAt, &manager.UpdatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Manager{}, "", apperr.NotFound("manager not found").WithOp(opGet)
	}
	if err != nil {
		return Manager{}, "", translate(opGet, err)
	}
	if hash == nil {
		return manager, "", nil
	}
	return manager, *hash, nil
}

func scanManager(row pgx.Row) (Manager, error) {
	var m Manager
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.FirstName, &m.LastName, &m.Email, &m.Phone,
		&m.Role, &m.AccessLevel, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// translate maps storage failures onto the domain error taxonomy.
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
			return apperr.Conflict("duplicate email or phone").WithOp(op)
		case "23503":
			return apperr.Validation("referenced row does not exist").WithOp(op)
		case "23514":
			return apperr.InvalidRange(pgErr.ConstraintName).WithOp(op)
		}
	}

	return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("storage operation failed: %v", err), err).WithOp(op)
}
