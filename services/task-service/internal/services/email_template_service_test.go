package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockEmailTemplateRepository is a mock implementation of EmailAdminTemplateRepository
type mockEmailTemplateRepository struct {
	template  *models.EmailTemplate
	templates []models.EmailTemplateListItem
	err       error

	lastPage   int
	lastCount  int
	lastSearch string
	updated    *models.UpdateEmailTemplateRequest
}

func (m *mockEmailTemplateRepository) GetBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.template, nil
}

func (m *mockEmailTemplateRepository) GetAll(ctx context.Context, page, count int, search string) ([]models.EmailTemplateListItem, error) {
	m.lastPage, m.lastCount, m.lastSearch = page, count, search
	if m.err != nil {
		return nil, m.err
	}
	return m.templates, nil
}

func (m *mockEmailTemplateRepository) UpdateBySlug(ctx context.Context, slug string, req *models.UpdateEmailTemplateRequest) error {
	if m.err != nil {
		return m.err
	}
	m.updated = req
	return nil
}

func TestEmailTemplateService_GetAll(t *testing.T) {
	repo := &mockEmailTemplateRepository{templates: []models.EmailTemplateListItem{{ID: 1, Slug: "achievement"}}}
	svc := NewEmailTemplateService(repo, zap.NewNop())

	templates, err := svc.GetAll(context.Background(), 0, -1, "  ach ")
	require.NoError(t, err)
	assert.Len(t, templates, 1)
	assert.Equal(t, 1, repo.lastPage)
	assert.Equal(t, 20, repo.lastCount)
	assert.Equal(t, "ach", repo.lastSearch)
}

func TestEmailTemplateService_GetBySlug(t *testing.T) {
	repo := &mockEmailTemplateRepository{template: &models.EmailTemplate{ID: 1, Slug: "achievement"}}
	svc := NewEmailTemplateService(repo, zap.NewNop())

	template, err := svc.GetBySlug(context.Background(), "achievement")
	require.NoError(t, err)
	assert.Equal(t, 1, template.ID)
}

func achievementTemplate() *models.EmailTemplate {
	return &models.EmailTemplate{
		ID:        1,
		Slug:      models.TemplateAchievement,
		Variables: []string{"title", "username", "description", "points"},
	}
}

func TestEmailTemplateService_Update(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.UpdateEmailTemplateRequest
		repo          *mockEmailTemplateRepository
		expectedError string
	}{
		{
			name: "success",
			req:  &models.UpdateEmailTemplateRequest{SubjectTemplate: " Well done, {{1}} "},
			repo: &mockEmailTemplateRepository{template: achievementTemplate()},
		},
		{
			name:          "unbound placeholder",
			req:           &models.UpdateEmailTemplateRequest{BodyTemplate: "{{2}} earned {{5}}"},
			repo:          &mockEmailTemplateRepository{template: achievementTemplate()},
			expectedError: "placeholder {{5}} must be between {{1}} and {{4}}",
		},
		{
			name:          "nothing to update",
			req:           &models.UpdateEmailTemplateRequest{SubjectTemplate: "  "},
			repo:          &mockEmailTemplateRepository{},
			expectedError: "subject_template or body_template is required",
		},
		{
			name:          "not found",
			req:           &models.UpdateEmailTemplateRequest{BodyTemplate: "Body"},
			repo:          &mockEmailTemplateRepository{err: errors.New("email template not found")},
			expectedError: "email template not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmailTemplateService(tt.repo, zap.NewNop())

			err := svc.Update(context.Background(), "achievement", tt.req)

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.Nil(t, tt.repo.updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Well done, {{1}}", tt.repo.updated.SubjectTemplate)
		})
	}
}
