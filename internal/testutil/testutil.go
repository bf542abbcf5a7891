// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/lkrweb/accounts/internal/database"
	"github.com/lkrweb/accounts/internal/models"
	"github.com/lkrweb/accounts/internal/repository"
)

// NewTestDB creates an in-memory SQLite database for tests. Returns both
// the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a verified test user with the given email and
// password. Username is the email, matching how verification promotes
// pending signups.
func NewTestUser(t *testing.T, repo *repository.Repository, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     email,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     1,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewFormContext creates an Echo context for a form post.
func NewFormContext(e *echo.Echo, method, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// AgeRow rewrites a row's created_at so TTL expiry paths can be tested
// without sleeping.
func AgeRow(t *testing.T, db *sqlx.DB, table, idColumn string, id, createdAt any) {
	t.Helper()
	//nolint:gosec // table and column names come from the test itself
	_, err := db.Exec(`UPDATE `+table+` SET created_at = ? WHERE `+idColumn+` = ?`, createdAt, id)
	require.NoError(t, err)
}
