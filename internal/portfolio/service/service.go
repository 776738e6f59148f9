// Package service holds the portfolio use cases. Most operations delegate
// to the repository; the service owns input shaping and logging.
package service

import (
	"context"

	"leasing_portal_backend/internal/portfolio/repository"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) GetCompany(ctx context.Context, tctx tenancy.Context) (repository.Company, error) {
	return s.repo.GetCompany(ctx, tctx)
}

func (s *Service) UpdateCompany(ctx context.Context, tctx tenancy.Context, name, logoURL, contactEmail, contactPhone *string) (repository.Company, error) {
	return s.repo.UpdateCompany(ctx, tctx, name, logoURL, contactEmail, contactPhone)
}

// CreateProperty creates a property, and its chatbot when requested, in one
// transaction.
func (s *Service) CreateProperty(ctx context.Context, tctx tenancy.Context, p repository.CreatePropertyParams) (repository.Property, *repository.Chatbot, error) {
	property, chatbot, err := s.repo.CreateProperty(ctx, tctx, p)
	if err != nil {
		return repository.Property{}, nil, err
	}

	s.log.Info("property created", "propertyId", property.ID, "withChatbot", chatbot != nil)
	return property, chatbot, nil
}

func (s *Service) GetProperty(ctx context.Context, tctx tenancy.Context, id uuid.UUID) (repository.Property, error) {
	return s.repo.GetProperty(ctx, tctx, id)
}

func (s *Service) ListProperties(ctx context.Context, tctx tenancy.Context, limit, offset int) ([]repository.Property, int, error) {
	return s.repo.ListProperties(ctx, tctx, limit, offset)
}

func (s *Service) UpdateProperty(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p repository.UpdatePropertyParams) (repository.Property, error) {
	return s.repo.UpdateProperty(ctx, tctx, id, p)
}

func (s *Service) DeleteProperty(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error {
	return s.repo.DeleteProperty(ctx, tctx, id)
}

func (s *Service) GetChatbotByProperty(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID) (repository.Chatbot, error) {
	return s.repo.GetChatbotByProperty(ctx, tctx, propertyID)
}

func (s *Service) CreateChatbot(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID, p repository.CreateChatbotParams) (repository.Chatbot, error) {
	return s.repo.CreateChatbot(ctx, tctx, propertyID, p)
}

func (s *Service) UpdateChatbot(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p repository.UpdateChatbotParams) (repository.Chatbot, error) {
	return s.repo.UpdateChatbot(ctx, tctx, id, p)
}

func (s *Service) ListFAQs(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID) ([]repository.FAQ, error) {
	return s.repo.ListFAQs(ctx, tctx, propertyID)
}

func (s *Service) CreateFAQ(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID, p repository.FAQParams) (repository.FAQ, error) {
	return s.repo.CreateFAQ(ctx, tctx, propertyID, p)
}

func (s *Service) UpdateFAQ(ctx context.Context, tctx tenancy.Context, id uuid.UUID, p repository.FAQParams) (repository.FAQ, error) {
	return s.repo.UpdateFAQ(ctx, tctx, id, p)
}

func (s *Service) DeleteFAQ(ctx context.Context, tctx tenancy.Context, id uuid.UUID) error {
	return s.repo.DeleteFAQ(ctx, tctx, id)
}

func (s *Service) CreateIntegration(ctx context.Context, tctx tenancy.Context, p repository.IntegrationParams) (repository.WebsiteIntegration, error) {
	return s.repo.CreateIntegration(ctx, tctx, p)
}

func (s *Service) ListIntegrations(ctx context.Context, tctx tenancy.Context, propertyID uuid.UUID) ([]repository.WebsiteIntegration, error) {
	return s.repo.ListIntegrations(ctx, tctx, propertyID)
}
