// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"github.com/lkrweb/accounts/internal/config"
	"github.com/lkrweb/accounts/internal/handlers"
	"github.com/lkrweb/accounts/internal/i18n"
	"github.com/lkrweb/accounts/internal/repository"
	"github.com/lkrweb/accounts/internal/services/auth"
	"github.com/lkrweb/accounts/internal/services/recovery"
	"github.com/lkrweb/accounts/internal/services/session"
	"github.com/lkrweb/accounts/internal/templates"
	"github.com/lkrweb/accounts/internal/testutil"
)

const testHashKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

// verificationMailer records verification emails.
type verificationMailer struct {
	codes map[string]string
}

func (m *verificationMailer) SendVerification(_ context.Context, to, code string) error {
	m.codes[to] = code
	return nil
}

// resetMailer records password reset emails.
type resetMailer struct {
	tokens map[string]string
}

func (m *resetMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.tokens[to] = token
	return nil
}

type env struct {
	e        *echo.Echo
	db       *sqlx.DB
	repo     *repository.Repository
	codes    *verificationMailer
	tokens   *resetMailer
	handlers *handlers.Handlers
	auth     *handlers.AuthHandlers
	recovery *handlers.RecoveryHandlers
	authSvc  *auth.Service
	resetSvc *recovery.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	require.NoError(t, i18n.Init())

	db, repo := testutil.NewTestDB(t)

	renderer, err := templates.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer

	sessions, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)

	codes := &verificationMailer{codes: map[string]string{}}
	tokens := &resetMailer{tokens: map[string]string{}}
	authSvc := auth.NewService(repo, codes)
	resetSvc := recovery.NewService(repo, tokens)

	return &env{
		e:        e,
		db:       db,
		repo:     repo,
		codes:    codes,
		tokens:   tokens,
		handlers: handlers.New(repo),
		auth:     handlers.NewAuth(authSvc, sessions),
		recovery: handlers.NewRecovery(resetSvc),
		authSvc:  authSvc,
		resetSvc: resetSvc,
	}
}

// cookieByName returns the response cookie with the given name, or nil.
func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
