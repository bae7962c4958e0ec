package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/edulearn/platform/services/task-service/internal/models"
	"go.uber.org/zap"
)

var errTemplateNotFound = errors.New("email template not found")

type emailTemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmailTemplateRepository creates a new email template repository
func NewEmailTemplateRepository(db *sql.DB, logger *zap.Logger) *emailTemplateRepository {
	return &emailTemplateRepository{db: db, logger: logger}
}

// splitVariables turns the comma separated variables column into names
func splitVariables(column string) []string {
	names := make([]string, 0)
	for _, name := range strings.Split(column, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// GetBySlug retrieves a full email template
func (r *emailTemplateRepository) GetBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	var (
		tmpl      models.EmailTemplate
		variables string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, slug, variables, subject_template, body_template, created_at, updated_at
		FROM email_templates
		WHERE slug = ?
	`, slug).Scan(&tmpl.ID, &tmpl.Slug, &variables, &tmpl.SubjectTemplate, &tmpl.BodyTemplate, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTemplateNotFound
	}
	if err != nil {
		r.logger.Error("failed to get email template", zap.Error(err), zap.String("slug", slug))
		return nil, fmt.Errorf("failed to get email template %s: %w", slug, err)
	}

	tmpl.Variables = splitVariables(variables)
	return &tmpl, nil
}

// GetPartsBySlug retrieves only what the worker needs to render a message
func (r *emailTemplateRepository) GetPartsBySlug(ctx context.Context, slug string) (*models.EmailTemplateParts, error) {
	var parts models.EmailTemplateParts
	err := r.db.QueryRowContext(ctx,
		`SELECT subject_template, body_template FROM email_templates WHERE slug = ?`, slug,
	).Scan(&parts.SubjectTemplate, &parts.BodyTemplate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTemplateNotFound
	}
	if err != nil {
		r.logger.Error("failed to get email template", zap.Error(err), zap.String("slug", slug))
		return nil, fmt.Errorf("failed to get email template %s: %w", slug, err)
	}
	return &parts, nil
}

// GetAll lists templates ordered by slug. A non-empty search matches slugs by substring.
func (r *emailTemplateRepository) GetAll(ctx context.Context, page, count int, search string) ([]models.EmailTemplateListItem, error) {
	query := `SELECT id, slug, variables, updated_at FROM email_templates`
	args := make([]any, 0, 3)
	if search != "" {
		query += ` WHERE slug LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY slug LIMIT ? OFFSET ?`
	args = append(args, count, (page-1)*count)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query email templates", zap.Error(err))
		return nil, fmt.Errorf("failed to query email templates: %w", err)
	}
	defer rows.Close()

	items := make([]models.EmailTemplateListItem, 0)
	for rows.Next() {
		var (
			item      models.EmailTemplateListItem
			variables string
		)
		if err := rows.Scan(&item.ID, &item.Slug, &variables, &item.UpdatedAt); err != nil {
			r.logger.Error("failed to scan email template", zap.Error(err))
			return nil, fmt.Errorf("failed to scan email template: %w", err)
		}
		item.Variables = splitVariables(variables)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// UpdateBySlug writes the non-empty parts of req. Nothing to write is a no-op.
func (r *emailTemplateRepository) UpdateBySlug(ctx context.Context, slug string, req *models.UpdateEmailTemplateRequest) error {
	var (
		sets []string
		args []any
	)
	for _, field := range []struct{ column, value string }{
		{"subject_template", req.SubjectTemplate},
		{"body_template", req.BodyTemplate},
	} {
		if field.value != "" {
			sets = append(sets, field.column+" = ?")
			args = append(args, field.value)
		}
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, slug)

	result, err := r.db.ExecContext(ctx,
		"UPDATE email_templates SET "+strings.Join(sets, ", ")+" WHERE slug = ?", args...)
	if err != nil {
		r.logger.Error("failed to update email template", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("failed to update email template %s: %w", slug, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return errTemplateNotFound
	}
	return nil
}
