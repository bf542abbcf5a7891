// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkrweb/accounts/internal/models"
	"github.com/lkrweb/accounts/internal/repository"
	"github.com/lkrweb/accounts/internal/testutil"
)

func TestReplaceActionToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "u@x.com", "password123")

	token, err := repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-1")

	require.NoError(t, err)
	assert.NotEmpty(t, token.ID)
	assert.Equal(t, user.ID, token.UserID)
	assert.Equal(t, "token-1", token.Token)
	assert.Equal(t, models.TokenKindPasswordReset, token.Kind)
}

func TestReplaceActionToken_NoStacking(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "u@x.com", "password123")

	_, err := repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-1")
	require.NoError(t, err)
	_, err = repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-2")
	require.NoError(t, err)

	count, err := repo.CountActionTokens(ctx, user.ID, models.TokenKindPasswordReset)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The superseded token no longer matches.
	_, err = repo.GetActionToken(ctx, "u@x.com", "token-1", models.TokenKindPasswordReset)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetActionToken(ctx, "u@x.com", "token-2", models.TokenKindPasswordReset)
	assert.NoError(t, err)
}

func TestGetActionToken_MatchesEmailTokenAndKind(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "u@x.com", "password123")
	_, err := repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-1")
	require.NoError(t, err)

	_, err = repo.GetActionToken(ctx, "other@x.com", "token-1", models.TokenKindPasswordReset)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetActionToken(ctx, "u@x.com", "wrong", models.TokenKindPasswordReset)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeActionToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "u@x.com", "password123")
	token, err := repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-1")
	require.NoError(t, err)

	err = repo.ConsumeActionToken(ctx, token.ID, user.ID, "new-hash")
	require.NoError(t, err)

	updated, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.PasswordHash)

	_, err = repo.GetActionToken(ctx, "u@x.com", "token-1", models.TokenKindPasswordReset)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeActionToken_AtMostOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "u@x.com", "password123")
	token, err := repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-1")
	require.NoError(t, err)

	require.NoError(t, repo.ConsumeActionToken(ctx, token.ID, user.ID, "hash-1"))

	// A second consume of the same token rolls back entirely: no error
	// swallowed, no password overwrite.
	err = repo.ConsumeActionToken(ctx, token.ID, user.ID, "hash-2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	unchanged, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", unchanged.PasswordHash)
}

func TestDeleteActionToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "u@x.com", "password123")
	token, err := repo.ReplaceActionToken(ctx, user.ID, models.TokenKindPasswordReset, "token-1")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteActionToken(ctx, token.ID))

	count, err := repo.CountActionTokens(ctx, user.ID, models.TokenKindPasswordReset)
	require.NoError(t, err)
	assert.Zero(t, count)
}
