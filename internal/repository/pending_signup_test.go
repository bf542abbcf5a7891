// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkrweb/accounts/internal/repository"
	"github.com/lkrweb/accounts/internal/testutil"
)

func TestUpsertPendingSignup(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	signup, err := repo.UpsertPendingSignup(ctx, "a@x.com", "hash", "code-1")

	require.NoError(t, err)
	assert.NotEmpty(t, signup.ID)
	assert.Equal(t, "a@x.com", signup.Email)
	assert.Equal(t, "code-1", signup.VerificationCode)
	assert.NotZero(t, signup.CreatedAt)
}

func TestUpsertPendingSignup_OverwritesExisting(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := repo.UpsertPendingSignup(ctx, "a@x.com", "hash-1", "code-1")
	require.NoError(t, err)

	second, err := repo.UpsertPendingSignup(ctx, "a@x.com", "hash-2", "code-2")
	require.NoError(t, err)

	// The row keeps its identity, only code/hash/timestamp change.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "code-2", second.VerificationCode)
	assert.Equal(t, "hash-2", second.PasswordHash)

	var count int64
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM pending_signups WHERE email = ?`, "a@x.com"))
	assert.Equal(t, int64(1), count)
}

func TestGetPendingSignup_ExactMatchOnly(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.UpsertPendingSignup(ctx, "a@x.com", "hash", "code-1")
	require.NoError(t, err)

	_, err = repo.GetPendingSignup(ctx, "a@x.com", "code-1")
	require.NoError(t, err)

	_, err = repo.GetPendingSignup(ctx, "a@x.com", "wrong-code")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetPendingSignup(ctx, "b@x.com", "code-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeletePendingSignup(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	signup, err := repo.UpsertPendingSignup(ctx, "a@x.com", "hash", "code-1")
	require.NoError(t, err)

	require.NoError(t, repo.DeletePendingSignup(ctx, signup.ID))

	_, err = repo.GetPendingSignupByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPromotePendingSignup(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	signup, err := repo.UpsertPendingSignup(ctx, "a@x.com", "stored-hash", "code-1")
	require.NoError(t, err)

	user, err := repo.PromotePendingSignup(ctx, signup)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@x.com", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	// The stored hash is carried over, not re-hashed.
	assert.Equal(t, "stored-hash", user.PasswordHash)
	assert.Equal(t, int64(1), user.IsActive)

	// Pending row is consumed.
	_, err = repo.GetPendingSignupByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPromotePendingSignup_DuplicateEmailRollsBack(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "a@x.com", "password123")

	signup, err := repo.UpsertPendingSignup(ctx, "a@x.com", "hash", "code-1")
	require.NoError(t, err)

	_, err = repo.PromotePendingSignup(ctx, signup)
	require.Error(t, err)

	// The pending row survives the failed promotion.
	_, err = repo.GetPendingSignupByEmail(ctx, "a@x.com")
	assert.NoError(t, err)
}
