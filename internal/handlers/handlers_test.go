// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkrweb/accounts/internal/appcontext"
	"github.com/lkrweb/accounts/internal/testutil"
)

func TestHealth(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/health", nil)

	require.NoError(t, env.handlers.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newEnv(t)
	require.NoError(t, env.db.Close())

	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/health", nil)

	require.NoError(t, env.handlers.Health(c))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestHome(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/", nil)

	require.NoError(t, env.handlers.Home(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccount(t *testing.T) {
	env := newEnv(t)
	user := testutil.NewTestUser(t, env.repo, "a@x.com", "pw123456")

	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/account", nil)
	ctx := appcontext.WithUser(c.Request().Context(), user)
	c.SetRequest(c.Request().WithContext(ctx))

	require.NoError(t, env.handlers.Account(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
}
