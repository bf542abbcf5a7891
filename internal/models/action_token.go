// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// TokenKind identifies what an ActionToken authorizes.
type TokenKind string

// Token kinds. Currently only password reset; the column is a plain TEXT
// so new kinds can be added without a migration.
const (
	TokenKindPasswordReset TokenKind = "password_reset"
)

// ActionToken is a single-use credential-recovery grant. For a given
// (user, kind) at most one live token exists; issuing a new one replaces
// the previous token atomically. Tokens are deleted on consumption and
// expire 30 minutes after creation, checked at use-time.
type ActionToken struct { //nolint:govet // fieldalignment not critical for models
	ID        string    `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"-"`
	Kind      TokenKind `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
