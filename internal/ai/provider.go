// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides typed HTTP clients for the generative model providers
// used by the advertorial pipeline: Gemini for structured copy generation
// (vision + JSON mode) and primary image synthesis, OpenAI for fallback
// image synthesis (DALL-E) and prompt moderation. Each client owns its wire
// format and talks to an injectable base URL so tests can point it at an
// httptest server.
package ai

import (
	"context"
	"errors"
	"net"
)

// ImageInput is an inline image attachment for a vision or image-generation
// request.
type ImageInput struct {
	MimeType string
	Data     []byte
}

// ClientConfig holds the credentials and settings for a provider client.
type ClientConfig struct {
	APIKey     string
	Model      string // text model (Gemini) — unused by OpenAI
	ImageModel string
	BaseURL    string
}

// IsTimeout reports whether err was caused by a deadline or network timeout.
// Timed-out provider calls feed the same fallback path as any other failure,
// but callers log them as a distinct error kind.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
