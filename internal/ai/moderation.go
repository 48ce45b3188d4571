// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // list of flagged category names (empty when safe)
}

// Moderator checks user-supplied text (visual briefs, product descriptions)
// for policy violations before it is spliced into generation prompts.
type Moderator interface {
	// CheckSafety evaluates a text prompt and returns whether it is safe
	// to send to an AI provider. If not safe, Categories lists the reasons.
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// NewModerator returns an OpenAI-backed moderator, or nil when no API key
// is configured. Callers treat a nil moderator as "everything passes" —
// the providers still apply their own built-in safety filters.
func NewModerator(apiKey, baseURL string) Moderator {
	if apiKey == "" {
		return nil
	}
	return newOpenAIModerator(apiKey, baseURL)
}

// openAIModerator uses the OpenAI Moderation API (POST /v1/moderations)
// which is free for all OpenAI API key holders.
type openAIModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIModerator(apiKey, baseURL string) *openAIModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIModerator{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	body := openAIModRequest{
		Model: "omni-moderation-latest",
		Input: text,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("moderation marshal: %w", err)
	}

	url := m.baseURL + "/moderations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("moderation read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result openAIModResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("moderation unmarshal: %w", err)
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}

	r := result.Results[0]
	if !r.Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	// Collect flagged category names in human-readable form.
	var flagged []string
	for cat, isFlagged := range r.Categories {
		if isFlagged {
			// Convert "hate/threatening" → "hate (threatening)" for readability.
			display := strings.ReplaceAll(cat, "/", " (")
			if strings.Contains(cat, "/") {
				display += ")"
			}
			display = strings.ReplaceAll(display, "_", " ")
			flagged = append(flagged, display)
		}
	}

	return &ModerationResult{
		Safe:       false,
		Categories: flagged,
	}, nil
}

// --- OpenAI moderation API types ---

type openAIModRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIModResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}

type openAIModResponse struct {
	Results []openAIModResult `json:"results"`
}
