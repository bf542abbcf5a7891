// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages. It implements echo.Renderer
// over embedded html/template files; every page is parsed together with
// the shared layout.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
)

//go:embed layout.html pages/*.html
var templateFS embed.FS

// Renderer implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses all embedded page templates.
func New() (*Renderer, error) {
	entries, err := fs.Glob(templateFS, "pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		tmpl, err := template.ParseFS(templateFS, "layout.html", entry)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry, err)
		}
		pages[entry[len("pages/"):]] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render renders a page by file name (e.g. "login.html").
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout.html", data)
}
