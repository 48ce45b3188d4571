// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gemini implements structured copy generation and primary image synthesis
// using the Google Gemini REST API (POST /v1beta/models/{model}:generateContent).
type Gemini struct {
	config    ClientConfig
	client    *http.Client // text requests
	imgClient *http.Client // image requests need a much longer deadline
}

// NewGemini creates a new Google Gemini client.
func NewGemini(cfg ClientConfig) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	return &Gemini{
		config:    cfg,
		client:    &http.Client{Timeout: 60 * time.Second},
		imgClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (g *Gemini) Name() string { return "gemini" }

// GenerateJSON sends a generateContent request constrained to a JSON
// response (responseMimeType application/json). Image attachments are
// passed as inlineData parts after the prompt text, preserving order.
// Returns the raw completion text; the caller owns contract parsing.
func (g *Gemini) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, images []ImageInput) (string, error) {
	parts := []geminiPart{{Text: userPrompt}}
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: img.MimeType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	body := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	result, err := g.generateContent(ctx, g.client, g.config.Model, body)
	if err != nil {
		return "", err
	}

	for _, part := range result.firstParts() {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", fmt.Errorf("gemini: no text in response")
}

// GenerateImage creates an image using Gemini's native generateContent API
// with responseModalities set to IMAGE. Up to three reference images may be
// attached inline for visual grounding. Returns image bytes and content type.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, refs []ImageInput) ([]byte, string, error) {
	model := g.config.ImageModel
	if model == "" {
		return nil, "", fmt.Errorf("gemini: image generation requires GEMINI_MODEL_IMAGE to be set")
	}

	parts := []geminiPart{{Text: "Generate an image of: " + prompt}}
	if len(refs) > 3 {
		refs = refs[:3]
	}
	for _, ref := range refs {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: ref.MimeType,
				Data:     base64.StdEncoding.EncodeToString(ref.Data),
			},
		})
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	result, err := g.generateContent(ctx, g.imgClient, model, body)
	if err != nil {
		return nil, "", err
	}

	for _, part := range result.firstParts() {
		if part.InlineData != nil && part.InlineData.Data != "" {
			imgBytes, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("gemini image decode base64: %w", err)
			}
			contentType := part.InlineData.MimeType
			if contentType == "" {
				contentType = "image/png"
			}
			return imgBytes, contentType, nil
		}
	}

	return nil, "", fmt.Errorf("gemini image: no image data in response")
}

// generateContent performs the HTTP call shared by text and image generation.
func (g *Gemini) generateContent(ctx context.Context, client *http.Client, model string, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.config.BaseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("gemini unmarshal: %w", err)
	}

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}

	return &result, nil
}

// --- Gemini API types ---

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// firstParts returns the parts of the first candidate, or nil.
func (r *geminiResponse) firstParts() []geminiPart {
	if len(r.Candidates) == 0 {
		return nil
	}
	return r.Candidates[0].Content.Parts
}
