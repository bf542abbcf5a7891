// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends transactional mail over SMTP.
package email

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/lkrweb/accounts/internal/config"
	"github.com/lkrweb/accounts/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service renders email templates and sends them via SMTP.
type Service struct {
	cfg       *config.SMTPConfig
	baseURL   string
	templates *template.Template
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}

	return &Service{
		cfg:       cfg,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: tmpl,
	}, nil
}

// SendVerification sends the account verification email carrying the
// signup code.
func (s *Service) SendVerification(ctx context.Context, to, code string) error {
	subject := i18n.T(ctx, "email_verification_subject")
	return s.send(to, subject, "verification.html", map[string]any{
		"Code": code,
	})
}

// SendPasswordReset sends the password reset email carrying the token and
// a prebuilt confirmation link.
func (s *Service) SendPasswordReset(ctx context.Context, to, token string) error {
	subject := i18n.T(ctx, "email_password_reset_subject")
	return s.send(to, subject, "password_reset.html", map[string]any{
		"Email":    to,
		"Token":    token,
		"ResetURL": s.resetURL(to, token),
	})
}

// resetURL builds the confirmation link. Query values are escaped so
// addresses with reserved characters (a+b@x.com) survive the round trip.
func (s *Service) resetURL(to, token string) string {
	query := url.Values{
		"email": {to},
		"token": {token},
	}
	return fmt.Sprintf("%s/auth/reset-password?%s", s.baseURL, query.Encode())
}

// send renders the named template and delivers it via SMTP.
func (s *Service) send(to, subject, templateName string, data map[string]any) error {
	var body strings.Builder
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("rendering %s: %w", templateName, err)
	}

	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS otherwise
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
