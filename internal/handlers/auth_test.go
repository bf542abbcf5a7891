// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkrweb/accounts/internal/repository"
	"github.com/lkrweb/accounts/internal/testutil"
)

func TestRegisterPage(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/auth/register", nil)

	require.NoError(t, env.auth.RegisterPage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/register", url.Values{
		"email":    {"a@x.com"},
		"password": {"pw123456"},
	})

	require.NoError(t, env.auth.Register(c))

	// Renders the verification page with the email prefilled.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
	assert.NotEmpty(t, env.codes.codes["a@x.com"])
}

func TestRegister_EmailTaken(t *testing.T) {
	env := newEnv(t)
	testutil.NewTestUser(t, env.repo, "a@x.com", "pw123456")

	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/register", url.Values{
		"email":    {"a@x.com"},
		"password": {"pw123456"},
	})

	require.NoError(t, env.auth.Register(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/register", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, cookieByName(rec, "_flash"))
}

func TestVerify(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.authSvc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/verify", url.Values{
		"email": {"a@x.com"},
		"code":  {env.codes.codes["a@x.com"]},
	})

	require.NoError(t, env.auth.Verify(c))

	// Redirects home with a fresh session.
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	session := cookieByName(rec, "_session")
	require.NotNil(t, session)
	assert.NotEmpty(t, session.Value)

	_, err = env.repo.GetUserByEmail(ctx, "a@x.com")
	assert.NoError(t, err)
}

func TestVerify_WrongCode(t *testing.T) {
	env := newEnv(t)

	_, err := env.authSvc.Register(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)

	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/verify", url.Values{
		"email": {"a@x.com"},
		"code":  {"wrong-code"},
	})

	require.NoError(t, env.auth.Verify(c))

	// Re-renders the form, no session, no account.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
	assert.Nil(t, cookieByName(rec, "_session"))

	_, err = env.repo.GetUserByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVerifyPage(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/auth/verify?email=a%40x.com", nil)

	require.NoError(t, env.auth.VerifyPage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
}

func TestLoginPage(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodGet, "/auth/login", nil)

	require.NoError(t, env.auth.LoginPage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newEnv(t)
	testutil.NewTestUser(t, env.repo, "a@x.com", "pw123456")

	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"pw123456"},
	})

	require.NoError(t, env.auth.Login(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, cookieByName(rec, "_session"))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newEnv(t)
	testutil.NewTestUser(t, env.repo, "a@x.com", "pw123456")

	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"wrong"},
	})

	require.NoError(t, env.auth.Login(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))
	assert.Nil(t, cookieByName(rec, "_session"))
	require.NotNil(t, cookieByName(rec, "_flash"))
}

func TestLogout(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/logout", nil)

	require.NoError(t, env.auth.Logout(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	session := cookieByName(rec, "_session")
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)
	assert.Empty(t, session.Value)
}

func TestLogout_WithoutSession(t *testing.T) {
	env := newEnv(t)
	c, rec := testutil.NewFormContext(env.e, http.MethodPost, "/auth/logout", nil)

	// No session cookie on the request; logout still succeeds.
	require.NoError(t, env.auth.Logout(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
