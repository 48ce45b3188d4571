// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging converts provider-generated images (typically PNG) into
// compressed lossy WebP for public serving, using libvips. Generated article
// images are large flat renders; lossy WebP at quality 82 cuts them to a
// fraction of the PNG size with no visible difference.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/davidbyttow/govips/v2/vips"
)

// DefaultQuality is the WebP quality used for generated article images.
const DefaultQuality = 82

// maxWidth caps the output width; providers occasionally return oversized renders.
const maxWidth = 1920

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// Transcoder converts raw image bytes into web-ready WebP.
type Transcoder struct {
	quality int
}

// NewTranscoder creates a Transcoder. quality <= 0 selects DefaultQuality.
func NewTranscoder(quality int) *Transcoder {
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Transcoder{quality: quality}
}

// ToWebP decodes the source image, downscales it to at most maxWidth, strips
// metadata, and exports lossy WebP bytes.
func (t *Transcoder) ToWebP(original []byte) ([]byte, error) {
	img, err := vips.NewImageFromBuffer(original)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode failed: %w", err)
	}
	defer img.Close()

	if img.Width() > maxWidth {
		if err := img.Thumbnail(maxWidth, 0, vips.InterestingNone); err != nil {
			return nil, fmt.Errorf("imaging: downscale failed: %w", err)
		}
	}

	if err := img.AutoRotate(); err != nil {
		return nil, fmt.Errorf("imaging: autorotate failed: %w", err)
	}

	params := vips.NewWebpExportParams()
	params.Quality = t.quality
	params.Lossless = false
	params.StripMetadata = true

	buf, meta, err := img.ExportWebp(params)
	if err != nil {
		return nil, fmt.Errorf("imaging: webp export failed: %w", err)
	}

	slog.Debug("imaging: transcoded",
		"in_bytes", len(original),
		"out_bytes", len(buf),
		"width", meta.Width,
		"height", meta.Height,
	)
	return buf, nil
}
