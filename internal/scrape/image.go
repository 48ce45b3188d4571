// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxImageBytes caps downloaded reference images. Anything bigger is not
// worth attaching to a vision request.
const maxImageBytes = 8 << 20 // 8 MiB

// FetchImage downloads a product image so it can be attached inline to a
// vision request. Unlike page scraping this DOES return errors — callers
// decide whether a missing reference image is fatal (it never is; they
// just drop the attachment).
func (e *Extractor) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("scrape image request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("scrape image fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("scrape image: status %d for %s", resp.StatusCode, imageURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("scrape image read: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("scrape image: %s exceeds %d bytes", imageURL, maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}
