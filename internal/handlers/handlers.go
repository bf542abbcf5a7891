// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP glue: it maps flow outcomes to
// redirects, flash messages and rendered pages.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lkrweb/accounts/internal/appcontext"
	"github.com/lkrweb/accounts/internal/flash"
	"github.com/lkrweb/accounts/internal/i18n"
	"github.com/lkrweb/accounts/internal/repository"
)

// Handlers contains the non-auth HTTP handlers.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health returns the health status, including database reachability.
func (h *Handlers) Health(c echo.Context) error {
	if err := h.repo.DB().PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home.html", nil)
}

// Account renders the account page for the authenticated user.
func (h *Handlers) Account(c echo.Context) error {
	return render(c, http.StatusOK, "account.html", nil)
}

// render renders a page with the common view data (current user, locale,
// CSRF token and pending flash message) merged in.
func render(c echo.Context, status int, page string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}

	ctx := c.Request().Context()
	data["User"] = appcontext.CurrentUser(ctx)
	data["Locale"] = i18n.GetLocale(ctx)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = flash.Pop(c)
	}
	if token, ok := c.Get("csrf").(string); ok {
		data["CSRF"] = token
	}

	return c.Render(status, page, data)
}
