package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edulearn/platform/libs/config"
	"gopkg.in/mail.v2"
)

// Mailer sends an HTML e-mail
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer from SMTP settings
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send sends an email using gopkg.in/mail.v2
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// RenderTemplate replaces {{1}}, {{2}}, ... with vars in order
func RenderTemplate(template string, vars ...string) string {
	for i, v := range vars {
		template = strings.ReplaceAll(template, fmt.Sprintf("{{%d}}", i+1), strings.TrimSpace(v))
	}
	return template
}

var placeholderPattern = regexp.MustCompile(`\{\{(\d+)\}\}`)

// CheckPlaceholders reports the first placeholder in template that has no variable bound to it
func CheckPlaceholders(template string, variables int) error {
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > variables {
			return fmt.Errorf("placeholder %s must be between {{1}} and {{%d}}", match[0], variables)
		}
	}
	return nil
}
