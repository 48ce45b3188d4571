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

// OpenAI implements the fallback image synthesis path using the OpenAI
// images API (POST /v1/images/generations). It is text-only: reference
// images are not supported, which is why the gateway hands it the plain
// prompt rather than the enhanced one.
type OpenAI struct {
	config ClientConfig
	client *http.Client
}

// NewOpenAI creates a new OpenAI client.
func NewOpenAI(cfg ClientConfig) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	return &OpenAI{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAI) Name() string { return "dalle" }

// GenerateImage requests a single 1024x1024 image as base64 and returns the
// decoded bytes. DALL-E always returns PNG.
func (p *OpenAI) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	body := openAIImageRequest{
		Model:          p.config.ImageModel,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "b64_json",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("openai image marshal: %w", err)
	}

	url := p.config.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("openai image request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("openai image http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("openai image read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("openai image API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result openAIImageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, "", fmt.Errorf("openai image unmarshal: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, "", fmt.Errorf("openai image: empty result")
	}

	imgBytes, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("openai image decode base64: %w", err)
	}

	return imgBytes, "image/png", nil
}

// --- OpenAI images API types ---

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openAIImageData struct {
	B64JSON string `json:"b64_json"`
}

type openAIImageResponse struct {
	Data []openAIImageData `json:"data"`
}
