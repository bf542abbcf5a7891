// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides typed request-context helpers shared across
// middleware, handlers and templates.
package appcontext

import (
	"context"

	"github.com/lkrweb/accounts/internal/models"
)

type userKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// CurrentUser returns the authenticated user, or nil if not authenticated.
func CurrentUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey{}).(*models.User); ok {
		return user
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return CurrentUser(ctx) != nil
}
