// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session implements cookie-based sessions with signed (and
// optionally encrypted) values. Flows never touch cookies directly; they
// go through the Manager.
package session

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/lkrweb/accounts/internal/config"
)

const keyLength = 32

// Data is the payload stored in the session cookie.
type Data struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager creates, parses and clears session cookies.
type Manager struct {
	codec      *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager from config. An empty hash key
// generates a random one, which invalidates all sessions on restart and
// is only suitable for development.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	var hashKey []byte
	if cfg.HashKey == "" {
		hashKey = securecookie.GenerateRandomKey(keyLength)
		slog.Warn("session hash key not configured, using a random key; sessions will not survive restarts")
	} else {
		var err error
		hashKey, err = hex.DecodeString(cfg.HashKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session hash key: %w", err)
		}
		if len(hashKey) != keyLength {
			return nil, fmt.Errorf("session hash key must be %d bytes, got %d", keyLength, len(hashKey))
		}
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		var err error
		blockKey, err = hex.DecodeString(cfg.BlockKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session block key: %w", err)
		}
		if len(blockKey) != keyLength {
			return nil, fmt.Errorf("session block key must be %d bytes, got %d", keyLength, len(blockKey))
		}
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:      codec,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     secure,
	}, nil
}

// Create starts a session for the given account and returns the cookie to
// set on the response.
func (m *Manager) Create(userID int64, email string) (*http.Cookie, error) {
	data := &Data{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Duration(m.maxAge) * time.Second),
	}

	encoded, err := m.codec.Encode(m.cookieName, data)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Parse extracts the session from a request. It returns (nil, nil) when
// there is no session, the cookie is invalid or tampered with, or the
// session has expired; those are normal for anonymous requests.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, nil //nolint:nilnil // absence of a session is not an error
	}

	var data Data
	if err := m.codec.Decode(m.cookieName, cookie.Value, &data); err != nil {
		return nil, nil //nolint:nilnil // invalid cookies are treated as anonymous
	}

	if time.Now().After(data.ExpiresAt) {
		return nil, nil //nolint:nilnil
	}

	return &data, nil
}

// Clear returns a cookie that removes the session. Safe to use with no
// active session.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
