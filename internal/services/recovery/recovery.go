// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recovery implements the password-recovery flow: issuing,
// validating and consuming single-use reset tokens.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lkrweb/accounts/internal/models"
	"github.com/lkrweb/accounts/internal/random"
	"github.com/lkrweb/accounts/internal/repository"
	"github.com/lkrweb/accounts/internal/services/auth"
)

var (
	// ErrNoAccount is returned when no account exists for the email. The
	// presentation layer phrases this as an invalid-email message.
	ErrNoAccount = errors.New("no account for email")
	// ErrInvalidToken covers a wrong, superseded, consumed or expired
	// token. The cases are deliberately indistinguishable.
	ErrInvalidToken = errors.New("invalid or expired reset token")
	// ErrPasswordMismatch is returned when password and confirmation
	// differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

const (
	// TokenTTL is how long a reset token stays valid, checked at
	// use-time.
	TokenTTL = 30 * time.Minute
	// TokenLength is the length of generated reset tokens.
	TokenLength = 64
)

// Mailer dispatches the password reset email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Service implements the recovery flow.
type Service struct {
	repo   *repository.Repository
	mailer Mailer
}

// NewService creates a new recovery service. mailer may be nil in tests.
func NewService(repo *repository.Repository, mailer Mailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

// Request issues a reset token for the account owning the email and mails
// it. Any previous live token of the same kind is replaced atomically, so
// at most one token is ever valid per account.
func (s *Service) Request(ctx context.Context, email string) error {
	email = auth.NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("recovery_request_failed", "email", email, "reason", "no_account")
			return ErrNoAccount
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := random.String(TokenLength)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if _, err := s.repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, token); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
			// Delivery failure does not fail the flow; the user can
			// request again for a fresh token.
			slog.Warn("reset_email_failed", "email", email, "error", err)
		}
	}

	slog.Info("recovery_requested", "user_id", user.ID, "email", email)
	return nil
}

// Confirm validates a reset token without consuming it. Used before
// showing the new-password form.
func (s *Service) Confirm(ctx context.Context, email, token string) error {
	_, err := s.lookupValidToken(ctx, email, token)
	return err
}

// SetPassword consumes a reset token and sets the account's new password.
// The token proves recovery authorization, so the old password is not
// required. The token is validated again here to defend against stale
// links, and deleted on success.
func (s *Service) SetPassword(ctx context.Context, email, token, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}

	at, err := s.lookupValidToken(ctx, email, token)
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.ConsumeActionToken(ctx, at.ID, at.UserID, string(passwordHash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with a concurrent consume of the same token.
			slog.Warn("reset_token_rejected", "user_id", at.UserID, "reason", "consumed")
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	slog.Info("password_reset_success", "user_id", at.UserID)
	return nil
}

func (s *Service) lookupValidToken(ctx context.Context, email, token string) (*models.ActionToken, error) {
	email = auth.NormalizeEmail(email)

	at, err := s.repo.GetActionToken(ctx, email, token, models.TokenKindPasswordReset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("reset_token_rejected", "email", email, "reason", "no_match")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if time.Since(at.CreatedAt) > TokenTTL {
		slog.Warn("reset_token_rejected", "email", email, "reason", "expired")
		return nil, ErrInvalidToken
	}

	return at, nil
}
