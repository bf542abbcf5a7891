// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package flash carries one-shot outcome messages across redirects using
// a short-lived cookie. Each flow returns a tagged success/error outcome;
// the next rendered page displays and clears it.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const cookieName = "_flash"

// Kinds of flash messages.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindInfo    = "info"
)

// Message is a tagged user-facing outcome.
type Message struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Set stores a flash message for the next request.
func Set(c echo.Context, kind, text string) {
	payload, err := json.Marshal(Message{Kind: kind, Text: text})
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending flash message, if any, and clears it.
func Pop(c echo.Context) *Message {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil
	}
	return &msg
}
