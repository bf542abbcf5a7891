// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lkrweb/accounts/internal/models"
)

// ReplaceActionToken issues a new token for (user, kind), atomically
// replacing any previous live token. A single upsert statement avoids the
// lost-update race of delete-then-create under concurrent requests.
func (r *Repository) ReplaceActionToken(ctx context.Context, userID int64, kind models.TokenKind, token string) (*models.ActionToken, error) {
	at := &models.ActionToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	// RETURNING reads back the stored row in the same statement; on
	// conflict the row keeps its original id.
	err := r.db.GetContext(ctx, at,
		`INSERT INTO action_tokens (id, user_id, token, kind, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, kind) DO UPDATE SET
			token = excluded.token,
			created_at = excluded.created_at
		 RETURNING *`,
		at.ID, at.UserID, at.Token, at.Kind, at.CreatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return at, nil
}

// GetActionToken retrieves a token by owning account email, token string
// and kind.
func (r *Repository) GetActionToken(ctx context.Context, email, token string, kind models.TokenKind) (*models.ActionToken, error) {
	var at models.ActionToken
	err := r.db.GetContext(ctx, &at,
		`SELECT t.* FROM action_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE u.email = ? AND t.token = ? AND t.kind = ?`,
		email, token, kind)
	if err != nil {
		return nil, wrapError(err)
	}
	return &at, nil
}

// GetActionTokenForUser retrieves the live token for (user, kind).
func (r *Repository) GetActionTokenForUser(ctx context.Context, userID int64, kind models.TokenKind) (*models.ActionToken, error) {
	var at models.ActionToken
	err := r.db.GetContext(ctx, &at,
		`SELECT * FROM action_tokens WHERE user_id = ? AND kind = ?`, userID, kind)
	if err != nil {
		return nil, wrapError(err)
	}
	return &at, nil
}

// DeleteActionToken deletes a token by id.
func (r *Repository) DeleteActionToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM action_tokens WHERE id = ?`, id)
	return err
}

// CountActionTokens returns the number of live tokens for (user, kind).
func (r *Repository) CountActionTokens(ctx context.Context, userID int64, kind models.TokenKind) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM action_tokens WHERE user_id = ? AND kind = ?`, userID, kind)
	return count, err
}

// ConsumeActionToken sets the owning user's password hash and deletes the
// token in one transaction. Consumption is strictly at-most-once: when the
// token row is already gone (a concurrent consume won the race) the whole
// transaction rolls back with ErrNotFound and the password stays untouched.
func (r *Repository) ConsumeActionToken(ctx context.Context, tokenID string, userID int64, passwordHash string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM action_tokens WHERE id = ?`, tokenID)
	if err != nil {
		return err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
