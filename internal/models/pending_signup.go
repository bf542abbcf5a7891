// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// PendingSignup is an unverified registration attempt. At most one row
// exists per email; repeated registrations overwrite code and timestamp.
// Validity (15 minute lifespan) is checked at use-time by the auth service,
// not by a background sweep.
type PendingSignup struct { //nolint:govet // fieldalignment not critical for models
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	VerificationCode string    `db:"verification_code" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
