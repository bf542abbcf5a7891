// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders unexpected errors as an HTML error page.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok && s != "" {
			message = s
		}
	}

	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}

	if renderErr := render(c, code, "error.html", map[string]any{
		"Code":    code,
		"Title":   title,
		"Message": message,
	}); renderErr != nil {
		slog.Error("error_page_render_failed", "error", renderErr)
		_ = c.NoContent(code)
	}
}
