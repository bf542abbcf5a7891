// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the registration and authentication flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lkrweb/accounts/internal/models"
	"github.com/lkrweb/accounts/internal/random"
	"github.com/lkrweb/accounts/internal/repository"
)

var (
	// ErrEmailTaken is returned when registering an email that already
	// belongs to a verified account.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCode covers both a wrong and an expired verification
	// code. The two cases are deliberately indistinguishable.
	ErrInvalidCode = errors.New("invalid or expired verification code")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	// SignupCodeTTL is how long a verification code stays valid. Expiry
	// is checked when the code is used, not by a background sweep.
	SignupCodeTTL = 15 * time.Minute
	// SignupCodeLength is the length of generated verification codes.
	SignupCodeLength = 32
)

// dummyHash is used for constant-time login to prevent timing attacks.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Mailer dispatches the verification email. Delivery is best-effort from
// the flow's perspective.
type Mailer interface {
	SendVerification(ctx context.Context, to, code string) error
}

// Service implements registration, verification and login.
type Service struct {
	repo   *repository.Repository
	mailer Mailer
}

// NewService creates a new auth service. mailer may be nil in tests.
func NewService(repo *repository.Repository, mailer Mailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

// NormalizeEmail lowercases and trims an email address. Applied at every
// read and write site so lookups always hit the stored normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register starts a signup for the given email. If a pending signup for
// the same email already exists it is overwritten with a fresh code and
// timestamp, so a user who never received the first email can simply
// register again. Returns the normalized email for display.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return "", ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := random.String(SignupCodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	if _, err := s.repo.UpsertPendingSignup(ctx, email, string(passwordHash), code); err != nil {
		return "", fmt.Errorf("failed to store pending signup: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerification(ctx, email, code); err != nil {
			// Delivery failure does not fail the flow; the user can
			// re-register to trigger a fresh email.
			slog.Warn("verification_email_failed", "email", email, "error", err)
		}
	}

	slog.Info("register_pending", "email", email)
	return email, nil
}

// Verify promotes a pending signup to a verified account. The submitted
// code must match exactly and be no older than SignupCodeTTL. The stored
// password hash is carried over without re-hashing.
func (s *Service) Verify(ctx context.Context, email, code string) (*models.User, error) {
	email = NormalizeEmail(email)

	signup, err := s.repo.GetPendingSignup(ctx, email, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("verify_failed", "email", email, "reason", "no_match")
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to look up pending signup: %w", err)
	}

	if time.Since(signup.CreatedAt) > SignupCodeTTL {
		slog.Warn("verify_failed", "email", email, "reason", "expired")
		return nil, ErrInvalidCode
	}

	user, err := s.repo.PromotePendingSignup(ctx, signup)
	if err != nil {
		return nil, fmt.Errorf("failed to promote pending signup: %w", err)
	}

	slog.Info("verify_success", "user_id", user.ID, "email", email)
	return user, nil
}

// Login authenticates a user and returns the user if successful.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison so an
			// unknown email is not distinguishable by response time.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return user, nil
}
