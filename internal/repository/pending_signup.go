// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lkrweb/accounts/internal/models"
)

// UpsertPendingSignup creates or replaces the pending signup for an email.
// The upsert is a single statement, so concurrent registration attempts
// for the same email can never leave two live rows.
func (r *Repository) UpsertPendingSignup(ctx context.Context, email, passwordHash, code string) (*models.PendingSignup, error) {
	signup := &models.PendingSignup{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     passwordHash,
		VerificationCode: code,
		CreatedAt:        time.Now().UTC(),
	}
	// RETURNING reads back the stored row in the same statement; on
	// conflict the row keeps its original id.
	err := r.db.GetContext(ctx, signup,
		`INSERT INTO pending_signups (id, email, password_hash, verification_code, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET
			password_hash = excluded.password_hash,
			verification_code = excluded.verification_code,
			created_at = excluded.created_at
		 RETURNING *`,
		signup.ID, signup.Email, signup.PasswordHash, signup.VerificationCode, signup.CreatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return signup, nil
}

// GetPendingSignup retrieves a pending signup by exact (email, code) match.
func (r *Repository) GetPendingSignup(ctx context.Context, email, code string) (*models.PendingSignup, error) {
	var signup models.PendingSignup
	err := r.db.GetContext(ctx, &signup,
		`SELECT * FROM pending_signups WHERE email = ? AND verification_code = ?`, email, code)
	if err != nil {
		return nil, wrapError(err)
	}
	return &signup, nil
}

// GetPendingSignupByEmail retrieves a pending signup by email.
func (r *Repository) GetPendingSignupByEmail(ctx context.Context, email string) (*models.PendingSignup, error) {
	var signup models.PendingSignup
	if err := r.db.GetContext(ctx, &signup, `SELECT * FROM pending_signups WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &signup, nil
}

// DeletePendingSignup deletes a pending signup by id.
func (r *Repository) DeletePendingSignup(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_signups WHERE id = ?`, id)
	return err
}

// PromotePendingSignup creates a verified user from a pending signup and
// deletes the pending row in one transaction. The stored password hash is
// carried over as-is. Username is the email, matching registration input.
func (r *Repository) PromotePendingSignup(ctx context.Context, signup *models.PendingSignup) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	user := &models.User{
		Username:     signup.Email,
		Email:        signup.Email,
		PasswordHash: signup.PasswordHash,
		IsActive:     1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_active, is_staff, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.IsActive, user.IsStaff, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_signups WHERE id = ?`, signup.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}
