package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"go.uber.org/zap"
)

// EmailAdminTemplateRepository is the interface that wraps methods for email template data access
type EmailAdminTemplateRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error)
	GetAll(ctx context.Context, page, count int, search string) ([]models.EmailTemplateListItem, error)
	UpdateBySlug(ctx context.Context, slug string, req *models.UpdateEmailTemplateRequest) error
}

type emailTemplateService struct {
	repo   EmailAdminTemplateRepository
	logger *zap.Logger
}

// NewEmailTemplateService creates a new email template service
func NewEmailTemplateService(repo EmailAdminTemplateRepository, logger *zap.Logger) *emailTemplateService {
	return &emailTemplateService{
		repo:   repo,
		logger: logger,
	}
}

// GetBySlug retrieves an email template by slug
func (s *emailTemplateService) GetBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// GetAll retrieves a paginated list of email templates
func (s *emailTemplateService) GetAll(ctx context.Context, page, count int, search string) ([]models.EmailTemplateListItem, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 20
	}

	return s.repo.GetAll(ctx, page, count, strings.TrimSpace(search))
}

// Update changes the subject and/or body of a template.
// Placeholders must refer to the template's variables.
func (s *emailTemplateService) Update(ctx context.Context, slug string, req *models.UpdateEmailTemplateRequest) error {
	req.SubjectTemplate = strings.TrimSpace(req.SubjectTemplate)
	req.BodyTemplate = strings.TrimSpace(req.BodyTemplate)
	if req.SubjectTemplate == "" && req.BodyTemplate == "" {
		return fmt.Errorf("subject_template or body_template is required")
	}

	current, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	for _, part := range []string{req.SubjectTemplate, req.BodyTemplate} {
		if err := CheckPlaceholders(part, len(current.Variables)); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateBySlug(ctx, slug, req); err != nil {
		return err
	}
	s.logger.Info("email template updated", zap.String("slug", slug))
	return nil
}
