// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lkrweb/accounts/internal/flash"
	"github.com/lkrweb/accounts/internal/i18n"
	"github.com/lkrweb/accounts/internal/services/auth"
	"github.com/lkrweb/accounts/internal/services/session"
)

// AuthHandlers contains handlers for registration and authentication.
type AuthHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(authService *auth.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		auth:     authService,
		sessions: sessions,
	}
}

// RegisterPage renders the registration page.
func (h *AuthHandlers) RegisterPage(c echo.Context) error {
	return render(c, http.StatusOK, "register.html", nil)
}

// Register starts a signup and renders the verification page on success.
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	email, err := h.auth.Register(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			flash.Set(c, flash.KindError, i18n.T(ctx, "flash_email_already_registered"))
			return c.Redirect(http.StatusSeeOther, "/auth/register")
		}
		slog.Error("register_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return render(c, http.StatusOK, "verify_account.html", map[string]any{
		"Email": email,
		"Flash": &flash.Message{
			Kind: flash.KindInfo,
			Text: i18n.TData(ctx, "flash_registration_success", map[string]any{"Email": email}),
		},
	})
}

// VerifyPage renders the verification form, typically reached from the
// registration page or a bookmarked link.
func (h *AuthHandlers) VerifyPage(c echo.Context) error {
	return render(c, http.StatusOK, "verify_account.html", map[string]any{
		"Email": c.QueryParam("email"),
	})
}

// Verify checks the submitted code and promotes the pending signup. On
// success the new account is logged in immediately.
func (h *AuthHandlers) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	email := c.FormValue("email")

	user, err := h.auth.Verify(ctx, email, c.FormValue("code"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			return render(c, http.StatusBadRequest, "verify_account.html", map[string]any{
				"Email": email,
				"Flash": &flash.Message{
					Kind: flash.KindError,
					Text: i18n.T(ctx, "flash_invalid_verification_code"),
				},
			})
		}
		slog.Error("verify_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	cookie, err := h.sessions.Create(user.ID, user.Email)
	if err != nil {
		slog.Error("session_create_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	c.SetCookie(cookie)

	flash.Set(c, flash.KindSuccess, i18n.T(ctx, "flash_account_verified"))
	return c.Redirect(http.StatusSeeOther, "/")
}

// LoginPage renders the login page.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	return render(c, http.StatusOK, "login.html", nil)
}

// Login authenticates the user and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.auth.Login(ctx, c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			flash.Set(c, flash.KindError, i18n.T(ctx, "flash_invalid_credentials"))
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
		slog.Error("login_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	cookie, err := h.sessions.Create(user.ID, user.Email)
	if err != nil {
		slog.Error("session_create_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	c.SetCookie(cookie)

	flash.Set(c, flash.KindSuccess, i18n.T(ctx, "flash_login_success"))
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout tears down the session. Idempotent: succeeds with or without an
// active session.
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	flash.Set(c, flash.KindSuccess, i18n.T(c.Request().Context(), "flash_logged_out"))
	return c.Redirect(http.StatusSeeOther, "/")
}
