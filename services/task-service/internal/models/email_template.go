package models

import "time"

// Template slugs seeded by migrations
const (
	TemplateAchievement   = "achievement"
	TemplateDailyReminder = "daily_reminder"
)

// EmailTemplate is a subject and HTML body with numbered placeholders.
// Variables names the value bound to each placeholder: Variables[0] fills {{1}}.
type EmailTemplate struct {
	ID              int       `json:"id"`
	Slug            string    `json:"slug"`
	Variables       []string  `json:"variables"`
	SubjectTemplate string    `json:"subject_template"`
	BodyTemplate    string    `json:"body_template"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateEmailTemplateRequest carries the parts an admin wants to change. Empty fields are left as is.
type UpdateEmailTemplateRequest struct {
	SubjectTemplate string `json:"subject_template,omitempty" validate:"omitempty,max=255"`
	BodyTemplate    string `json:"body_template,omitempty"`
}

// EmailTemplateListItem is a template row in the admin list
type EmailTemplateListItem struct {
	ID        int       `json:"id"`
	Slug      string    `json:"slug"`
	Variables []string  `json:"variables"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailTemplateParts holds the subject and body used to render a message
type EmailTemplateParts struct {
	SubjectTemplate string
	BodyTemplate    string
}
