package repository

import (
	"context"
	"errors"

	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetChatbotByProperty returns the property's chatbot; each property has at
// most one.
func (r *Repository) GetChatbotByProperty(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID) (Chatbot, error) {
	if r == nil || r.pool == nil {
		return Chatbot{}, apperr.Internal(errRepoNotConfigured).WithOp(opChatbot)
	}
	pred, err := tenancy.Filter(tenancy.EntityChatbot, tctx, 1)
	if err != nil {
		return Chatbot{}, err
	}

	args := append([]any{propertyID}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		SELECT `+chatbotColumns+`
		FROM lp_chatbot
		WHERE property_id = $1 AND `+pred.SQL,
		args...)

	chatbot, err := scanChatbot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Chatbot{}, apperr.NotFound("chatbot not found").WithOp(opChatbot)
	}
	if err != nil {
		return Chatbot{}, translate(opChatbot, err)
	}
	return chatbot, nil
}

// CreateChatbot attaches a chatbot to an existing property. The UNIQUE
// constraint on property_id rejects a second one.
func (r *Repository) CreateChatbot(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID, p CreateChatbotParams) (Chatbot, error) {
	if r == nil || r.pool == nil {
		return Chatbot{}, apperr.Internal(errRepoNotConfigured).WithOp(opChatbot)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Chatbot{}, err
	}

	// The property must be visible before the insert is attempted.
	if _, err := r.GetProperty(ctx, tctx, propertyID); err != nil {
		return Chatbot{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lp_chatbot (property_id, name, avatar_url, welcome_message, widget_settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+chatbotColumns,
		propertyID, p.Name, p.AvatarURL, p.WelcomeMessage, p.WidgetSettings)

	chatbot, err := scanChatbot(row)
	if err != nil {
		return Chatbot{}, translate(opChatbot, err)
	}
	return chatbot, nil
}

func (r *Repository) UpdateChatbot(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p UpdateChatbotParams) (Chatbot, error) {
	if r == nil || r.pool == nil {
		return Chatbot{}, apperr.Internal(errRepoNotConfigured).WithOp(opChatbot)
	}
	if err := tctx.RequireWrite(); err != nil {
		return Chatbot{}, err
	}
	pred, err := tenancy.Filter(tenancy.EntityChatbot, tctx, 7)
	if err != nil {
		return Chatbot{}, err
	}

	args := append([]any{id, p.Name, p.AvatarURL, p.IsActive, p.WelcomeMessage, p.EmbedCode, p.WidgetSettings}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_chatbot SET
			name            = COALESCE($2, name),
			avatar_url      = COALESCE($3, avatar_url),
			is_active       = COALESCE($4, is_active),
			welcome_message = COALESCE($5, welcome_message),
			embed_code      = COALESCE($6, embed_code),
			widget_settings = COALESCE($7, widget_settings),
			updated_at      = now()
		WHERE id = $1 AND `+pred.SQL+`
		RETURNING `+chatbotColumns,
		args...)

	chatbot, err := scanChatbot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Chatbot{}, apperr.NotFound("chatbot not found").WithOp(opChatbot)
	}
	if err != nil {
		return Chatbot{}, translate(opChatbot, err)
	}
	return chatbot, nil
}

// ListFAQs returns a property's FAQ entries.
func (r *Repository) ListFAQs(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID) ([]FAQ, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opFAQ)
	}
	pred, err := tenancy.Filter(tenancy.EntityFAQ, tctx, 1)
	if err != nil {
		return nil, err
	}

	args := append([]any{propertyID}, pred.Args...)
	rows, err := r.pool.Query(ctx, `
		SELECT `+faqColumns+`
		FROM lp_faq
		WHERE property_id = $1 AND `+pred.SQL+`
		ORDER BY category NULLS LAST, created_at`,
		args...)
	if err != nil {
		return nil, translate(opFAQ, err)
	}
	defer rows.Close()

	faqs := make([]FAQ, 0, 32)
	for rows.Next() {
		faq, err := scanFAQ(rows)
		if err != nil {
			return nil, translate(opFAQ, err)
		}
		faqs = append(faqs, faq)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(opFAQ, err)
	}
	return faqs, nil
}

func (r *Repository) CreateFAQ(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID, p FAQParams) (FAQ, error) {
	if r == nil || r.pool == nil {
		return FAQ{}, apperr.Internal(errRepoNotConfigured).WithOp(opFAQ)
	}
	if err := tctx.RequireWrite(); err != nil {
		return FAQ{}, err
	}
	if _, err := r.GetProperty(ctx, tctx, propertyID); err != nil {
		return FAQ{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lp_faq (property_id, question, answer, category, source_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+faqColumns,
		propertyID, p.Question, p.Answer, p.Category, p.SourceType)

	faq, err := scanFAQ(row)
	if err != nil {
		return FAQ{}, translate(opFAQ, err)
	}
	return faq, nil
}

func (r *Repository) UpdateFAQ(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p FAQParams) (FAQ, error) {
	if r == nil || r.pool == nil {
		return FAQ{}, apperr.Internal(errRepoNotConfigured).WithOp(opFAQ)
	}
	if err := tctx.RequireWrite(); err != nil {
		return FAQ{}, err
	}
	pred, err := tenancy.Filter(tenancy.EntityFAQ, tctx, 5)
	if err != nil {
		return FAQ{}, err
	}

	args := append([]any{id, p.Question, p.Answer, p.Category, p.SourceType}, pred.Args...)
	row := r.pool.QueryRow(ctx, `
		UPDATE lp_faq SET
			question    = $2,
			answer      = $3,
			category    = $4,
			source_type = $5,
			updated_at  = now()
		WHERE id = $1 AND `+pred.SQL+`
		RETURNING `+faqColumns,
		args...)

	faq, err := scanFAQ(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FAQ{}, apperr.NotFound("faq not found").WithOp(opFAQ)
	}
	if err != nil {
		return FAQ{}, translate(opFAQ, err)
	}
	return faq, nil
}

func (r *Repository) DeleteFAQ(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opFAQ)
	}
	if err := tctx.RequireWrite(); err != nil {
		return err
	}
	pred, err := tenancy.Filter(tenancy.EntityFAQ, tctx, 1)
	if err != nil {
		return err
	}

	args := append([]any{id}, pred.Args...)
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM lp_faq WHERE id = $1 AND `+pred.SQL,
		args...)
	if err != nil {
		return translate(opFAQ, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("faq not found").WithOp(opFAQ)
	}
	return nil
}

// CreateIntegration records a website embedding of a property's chatbot.
func (r *Repository) CreateIntegration(ctx context.Context, tctx tenancy.Context, p IntegrationParams) (WebsiteIntegration, error) {
	if r == nil || r.pool == nil {
		return WebsiteIntegration{}, apperr.Internal(errRepoNotConfigured).WithOp(opIntegration)
	}
	if err := tctx.RequireWrite(); err != nil {
		return WebsiteIntegration{}, err
	}
	if _, err := r.GetProperty(ctx, tctx, p.PropertyID); err != nil {
		return WebsiteIntegration{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lp_website_integration
			(property_id, chatbot_id, website_url, integration_type, configuration, tracking_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+integrationColumns,
		p.PropertyID, p.ChatbotID, p.WebsiteURL, p.IntegrationType, p.Configuration, p.TrackingID)

	integration, err := scanIntegration(row)
	if err != nil {
		return WebsiteIntegration{}, translate(opIntegration, err)
	}
	return integration, nil
}

func (r *Repository) ListIntegrations(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID) ([]WebsiteIntegration, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opIntegration)
	}
	pred, err := tenancy.Filter(tenancy.EntityWebsiteIntegration, tctx, 1)
	if err != nil {
		return nil, err
	}

	args := append([]any{propertyID}, pred.Args...)
	rows, err := r.pool.Query(ctx, `
		SELECT `+integrationColumns+`
		FROM lp_website_integration
		WHERE property_id = $1 AND `+pred.SQL+`
		ORDER BY created_at DESC`,
		args...)
	if err != nil {
		return nil, translate(opIntegration, err)
	}
	defer rows.Close()

	integrations := make([]WebsiteIntegration, 0, 8)
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, translate(opIntegration, err)
		}
		integrations = append(integrations, integration)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(opIntegration, err)
	}
	return integrations, nil
}

func scanFAQ(row pgx.Row) (FAQ, error) {
	var f FAQ
	err := row.Scan(&f.ID, &f.PropertyID, &f.Question, &f.Answer, &f.Category, &f.SourceType, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func scanIntegration(row pgx.Row) (WebsiteIntegration, error) {
	var w WebsiteIntegration
	err := row.Scan(
		&w.ID, &w.PropertyID, &w.ChatbotID, &w.WebsiteURL, &w.IntegrationType,
		&w.Configuration, &w.IsActive, &w.TrackingID, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}
