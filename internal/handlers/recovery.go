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
	"github.com/lkrweb/accounts/internal/services/recovery"
)

// RecoveryHandlers contains handlers for the password-recovery flow.
type RecoveryHandlers struct {
	recovery *recovery.Service
}

// NewRecovery creates a new RecoveryHandlers instance.
func NewRecovery(recoveryService *recovery.Service) *RecoveryHandlers {
	return &RecoveryHandlers{recovery: recoveryService}
}

// RequestPage renders the forgot-password page.
func (h *RecoveryHandlers) RequestPage(c echo.Context) error {
	return render(c, http.StatusOK, "forgot_password.html", nil)
}

// Request issues a reset token and mails it. An unknown email is reported
// with invalid-email framing, not as "no such account".
func (h *RecoveryHandlers) Request(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.recovery.Request(ctx, c.FormValue("email"))
	if err != nil {
		if errors.Is(err, recovery.ErrNoAccount) {
			flash.Set(c, flash.KindError, i18n.T(ctx, "flash_invalid_reset_email"))
			return c.Redirect(http.StatusSeeOther, "/auth/forgot-password")
		}
		slog.Error("recovery_request_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	flash.Set(c, flash.KindSuccess, i18n.T(ctx, "flash_reset_requested"))
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

// Confirm validates the reset link and shows the new-password form. No
// state change happens here; the token is validated again on submit.
func (h *RecoveryHandlers) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	email := c.QueryParam("email")
	token := c.QueryParam("token")

	if err := h.recovery.Confirm(ctx, email, token); err != nil {
		if errors.Is(err, recovery.ErrInvalidToken) {
			flash.Set(c, flash.KindError, i18n.T(ctx, "flash_invalid_reset_token"))
			return c.Redirect(http.StatusSeeOther, "/auth/forgot-password")
		}
		slog.Error("recovery_confirm_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return render(c, http.StatusOK, "set_new_password.html", map[string]any{
		"Email": email,
		"Token": token,
	})
}

// SetPassword consumes the reset token and updates the password. On a
// password mismatch the form is re-rendered with email and token intact.
func (h *RecoveryHandlers) SetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	email := c.FormValue("email")
	token := c.FormValue("token")

	err := h.recovery.SetPassword(ctx, email, token, c.FormValue("password1"), c.FormValue("password2"))
	if err != nil {
		switch {
		case errors.Is(err, recovery.ErrPasswordMismatch):
			return render(c, http.StatusOK, "set_new_password.html", map[string]any{
				"Email": email,
				"Token": token,
				"Flash": &flash.Message{
					Kind: flash.KindError,
					Text: i18n.T(ctx, "flash_password_mismatch"),
				},
			})
		case errors.Is(err, recovery.ErrInvalidToken):
			flash.Set(c, flash.KindError, i18n.T(ctx, "flash_invalid_reset_token"))
			return c.Redirect(http.StatusSeeOther, "/auth/forgot-password")
		default:
			slog.Error("recovery_set_password_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	flash.Set(c, flash.KindSuccess, i18n.T(ctx, "flash_password_reset_success"))
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}
