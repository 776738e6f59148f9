// Package repository persists the property portfolio: companies,
// properties, chatbots, FAQs and website integrations. All access is
// company-grant scoped.
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
	opCompany     = "portfolio.repository.company"
	opProperty    = "portfolio.repository.property"
	opChatbot     = "portfolio.repository.chatbot"
	opFAQ         = "portfolio.repository.faq"
	opIntegration = "portfolio.repository.integration"

	errRepoNotConfigured = "portfolio repository not configured"
)

const (
	companyColumns     = `id, name, logo_url, contact_email, contact_phone, created_at, updated_at`
	propertyColumns    = `id, company_id, name, address, city, state, zip_code, property_type, units_count, amenities, features, website_url, created_at, updated_at`
	chatbotColumns     = `id, property_id, name, avatar_url, is_active, welcome_message, embed_code, widget_settings, created_at, updated_at`
	faqColumns         = `id, property_id, question, answer, category, source_type, created_at, updated_at`
	integrationColumns = `id, property_id, chatbot_id, website_url, integration_type, configuration, is_active, tracking_id, created_at, updated_at`
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCompany returns the caller's company profile.
func (r *Repository) GetCompany(ctx context.Context, tctx tenancy.Context) (Company, error) {
	if r == nil || r.pool == nil {
		return Company{}, apperr.Internal(errRepoNotConfigured).WithOp(opCompany)
	}
	pred, err := tenancy.Filter(tenancy.EntityCompany, tctx, 0)
	if err != nil {
		return Company{}, err
	}

	row := r.pool.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM lp_company
		WHERE `+pred.SQL,
		pred.Args...)

	company, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, apperr.NotFound("company not found").WithOp(opCompany)
	}
	if err != nil {
		return Company{}, translate(opCompany, err)
	}
	return company, nil
}

// UpdateCompany updates the caller's company profile.
func (r *Repository) UpdateCompany(ctx context.Context, tctx tenancy.Context, name, logoURL, contactEmail, contactPhone *string) (Company, error) {
	if r == nil || r.pool == nil {
		return Company{}, apperr.Internal(errRepoNotConfigured).WithOp(opCompany)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Company{}, err
	}
	pred, err := tenancy.Filter(tenancy.EntityCompany, tctx, 4)
	if err != nil {
		return Company{}, err
	}

	args := append([]any{name, logoURL, contactEmail, contactPhone}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_company SET
			name          = COALESCE($1, name),
			logo_url      = COALESCE($2, logo_url),
			contact_email = COALESCE($3, contact_email),
			contact_phone = COALESCE($4, contact_phone),
			updated_at    = now()
		WHERE `+pred.SQL+`
		RETURNING `+companyColumns,
		args...)

	company, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, apperr.NotFound("company not found").WithOp(opCompany)
	}
	if err != nil {
		return Company{}, translate(opCompany, err)
	}
	return company, nil
}

// CreateProperty inserts a property, and when params carry a chatbot, the
// chatbot too, in one transaction; a failure on either rolls back both.
func (r *Repository) CreateProperty(ctx context.Context, tctx tenancy.Context, p CreatePropertyParams) (Property, *Chatbot, error) {
	if r == nil || r.pool == nil {
		return Property{}, nil, apperr.Internal(errRepoNotConfigured).WithOp(opProperty)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Property{}, nil, err
	}
	if tctx.CompanyID == nil {
		return Property{}, nil, apperr.Forbidden("company-wide access required").WithOp(opProperty)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Property{}, nil, translate(opProperty, err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO lp_property
			(company_id, name, address, city, state, zip_code, property_type, units_count, amenities, features, website_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+propertyColumns,
		*tctx.CompanyID, p.Name, p.Address, p.City, p.State, p.ZipCode,
		p.PropertyType, p.UnitsCount, p.Amenities, p.Features, p.WebsiteURL)

	property, err := scanProperty(row)
	if err != nil {
		return Property{}, nil, translate(opProperty, err)
	}

	var chatbot *Chatbot
	if p.Chatbot != nil {
		row = tx.QueryRow(ctx, `
			INSERT INTO lp_chatbot (property_id, name, avatar_url, welcome_message, widget_settings)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+chatbotColumns,
			property.ID, p.Chatbot.Name, p.Chatbot.AvatarURL, p.Chatbot.WelcomeMessage, p.Chatbot.WidgetSettings)

		created, err := scanChatbot(row)
		if err != nil {
			return Property{}, nil, translate(opChatbot, err)
		}
		chatbot = &created
	}

	if err := tx.Commit(ctx); err != nil {
		return Property{}, nil, translate(opProperty, err)
	}
	return property, chatbot, nil
}

func (r *Repository) GetProperty(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (Property, error) {
	if r == nil || r.pool == nil {
		return Property{}, apperr.Internal(errRepoNotConfigured).WithOp(opProperty)
	}
	pred, err := tenancy.Filter(tenancy.EntityProperty, tctx, 1)
	if err != nil {
		return Property{}, err
	}

	args := append([]any{id}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+`
		FROM lp_property
		WHERE id = $1 AND `+pred.SQL,
		args...)

	property, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, apperr.NotFound("property not found").WithOp(opProperty)
	}
	if err != nil {
		return Property{}, translate(opProperty, err)
	}
	return property, nil
}

func (r *Repository) ListProperties(ctx context.Context, tctx tenancy.Context, limit, offset int) ([]Property, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opProperty)
	}
	pred, err := tenancy.Filter(tenancy.EntityProperty, tctx, 0)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lp_property WHERE `+pred.SQL,
		pred.Args...).Scan(&total); err != nil {
		return nil, 0, translate(opProperty, err)
	}

	pagedArgs := append(append([]any{}, pred.Args...), limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM lp_property
		WHERE %s
		ORDER BY name
		LIMIT $%d OFFSET $%d`,
		propertyColumns, pred.SQL, len(pred.Args)+1, len(pred.Args)+2),
		pagedArgs...)
	if err != nil {
		return nil, 0, translate(opProperty, err)
	}
	defer rows.Close()

	properties := make([]Property, 0, limit)
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, 0, translate(opProperty, err)
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(opProperty, err)
	}
	return properties, total, nil
}

func (r *Repository) UpdateProperty(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p UpdatePropertyParams) (Property, error) {
	if r == nil || r.pool == nil {
		return Property{}, apperr.Internal(errRepoNotConfigured).WithOp(opProperty)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Property{}, err
	}
	pred, err := tenancy.Filter(tenancy.EntityProperty, tctx, 11)
	if err != nil {
		return Property{}, err
	}

	args := append([]any{id, p.Name, p.Address, p.City, p.State, p.ZipCode,
		p.PropertyType, p.UnitsCount, p.Amenities, p.Features, p.WebsiteURL}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_property SET
			name          = COALESCE($2, name),
			address       = COALESCE($3, address),
			city          = COALESCE($4, city),
			state         = COALESCE($5, state),
			zip_code      = COALESCE($6, zip_code),
			property_type = COALESCE($7, property_type),
			units_count   = COALESCE($8, units_count),
			amenities     = COALESCE($9, amenities),
			features      = COALESCE($10, features),
			website_url   = COALESCE($11, website_url),
			updated_at    = now()
		WHERE id = $1 AND `+pred.SQL+`
		RETURNING `+propertyColumns,
		args...)

	property, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, apperr.NotFound("property not found").WithOp(opProperty)
	}
	if err != nil {
		return Property{}, translate(opProperty, err)
	}
	return property, nil
}

// DeleteProperty removes the property; chatbot, FAQs, conversations and
// integrations cascade.
func (r *Repository) DeleteProperty(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opProperty)
	}
	if err := tctx.RequireWrite(); err != nil {
		return err
	}
	pred, err := tenancy.Filter(tenancy.EntityProperty, tctx, 1)
	if err != nil {
		return err
	}

	args := append([]any{id}, pred.Args...)
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM lp_property WHERE id = $1 AND `+pred.SQL,
		args...)
	if err != nil {
		return translate(opProperty, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("property not found").WithOp(opProperty)
	}
	return nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.LogoURL, &c.ContactEmail, &c.ContactPhone, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.Address, &p.City, &p.State, &p.ZipCode,
		&p.PropertyType, &p.UnitsCount, &p.Amenities, &p.Features, &p.WebsiteURL,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanChatbot(row pgx.Row) (Chatbot, error) {
	var c Chatbot
	err := row.Scan(
		&c.ID, &c.PropertyID, &c.Name, &c.AvatarURL, &c.IsActive,
		&c.WelcomeMessage, &c.EmbedCode, &c.WidgetSettings, &c.CreatedAt, &c.UpdatedAt)
	return c, err
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
		case "23503":
			return apperr.Validation("referenced row does not exist").WithOp(op)
		case "23514":
			return apperr.InvalidRange(pgErr.ConstraintName).WithOp(op)
		}
	}

	return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("storage operation failed: %v", err), err).WithOp(op)
}
