// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"adverpress/internal/ai"
)

// ImageRole distinguishes the two slots of an article's image pair.
type ImageRole int

const (
	// RoleProblem is image slot 0: the pain point scene, never the product.
	RoleProblem ImageRole = iota
	// RoleSolution is image slot 1: relief, product in use.
	RoleSolution
)

// GeneratedImage is one finished, uploaded article image.
type GeneratedImage struct {
	URL    string `json:"url"`
	Engine string `json:"engine"`
}

// SynthesisContext carries per-slot inputs for one gateway call.
type SynthesisContext struct {
	Role ImageRole
	// PhysicalDescription of the product, appended verbatim to solution
	// prompts only.
	PhysicalDescription string
	// References are passed to the primary provider for visual grounding.
	References []ai.ImageInput
}

// PrimaryImageClient is the multimodal provider tried first. It accepts
// reference images.
type PrimaryImageClient interface {
	Name() string
	GenerateImage(ctx context.Context, prompt string, refs []ai.ImageInput) (data []byte, contentType string, err error)
}

// FallbackImageClient is the plain text-to-image provider used after any
// primary-path failure.
type FallbackImageClient interface {
	Name() string
	GenerateImage(ctx context.Context, prompt string) (data []byte, contentType string, err error)
}

// ImageTranscoder converts provider output to the stored web format.
type ImageTranscoder interface {
	ToWebP(original []byte) ([]byte, error)
}

// ImageUploader stores finished image bytes and returns a public URL.
type ImageUploader interface {
	UploadPublic(ctx context.Context, prefix, ext, contentType string, data []byte) (string, error)
}

const (
	styleSuffix = " Photorealistic, shot on a modern smartphone camera, natural imperfect framing, everyday European home interior, realistic skin texture, no illustration, no 3D render, no text or watermarks."

	criticalExclusions = " CRITICAL EXCLUSIONS: the image must contain absolutely no bottles, containers, packaging, labels, logos, branded objects, cleaning products or retail products of any kind. Only the person and the environment."

	uploadPrefix = "generated"
)

// personCues mark a prompt as depicting a person, which requires a wardrobe
// descriptor from the whitelist.
var personCues = []string{
	"woman", "man", "person", "mother", "father", "she ", "he ",
	"her ", "his ", "lady", "guy", "girl", "boy", "couple", "family",
}

// Gateway turns one sanitized prompt into one stored image, with a single
// fallback attempt. No retries against the same provider: a generation call
// runs tens of seconds and a second identical attempt rarely ends better.
type Gateway struct {
	Primary  PrimaryImageClient
	Fallback FallbackImageClient
	Trans    ImageTranscoder
	Store    ImageUploader

	// pick selects a clothing descriptor; swappable in tests.
	pick func() string
}

// NewGateway wires a gateway with randomized clothing selection.
func NewGateway(primary PrimaryImageClient, fallback FallbackImageClient, trans ImageTranscoder, store ImageUploader) *Gateway {
	return &Gateway{
		Primary:  primary,
		Fallback: fallback,
		Trans:    trans,
		Store:    store,
		pick: func() string {
			return ClothingOptions[rand.IntN(len(ClothingOptions))]
		},
	}
}

// EnhancePrompt builds the adorned prompt sent to the primary provider:
// clothing descriptor when a person is implied, the physical product
// description on solution images, the exclusion clause on problem images,
// and the global style suffix.
func (g *Gateway) EnhancePrompt(prompt string, sc SynthesisContext) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))

	if impliesPerson(prompt) {
		b.WriteString(" The person is wearing ")
		b.WriteString(g.pick())
		b.WriteString(".")
	}

	if sc.Role == RoleSolution && sc.PhysicalDescription != "" {
		b.WriteString(" The product looks exactly like this: ")
		b.WriteString(sc.PhysicalDescription)
	}
	if sc.Role == RoleProblem {
		b.WriteString(criticalExclusions)
	}

	b.WriteString(styleSuffix)
	return b.String()
}

// Synthesize produces one stored image for prompt, or nil when both
// providers fail. Any failure on the primary path (generation, transcode,
// upload) switches to the fallback with the plain, unadorned prompt.
func (g *Gateway) Synthesize(ctx context.Context, prompt string, sc SynthesisContext) *GeneratedImage {
	if g.Store == nil {
		slog.Warn("image synthesis skipped, no object storage configured")
		return nil
	}

	enhanced := g.EnhancePrompt(prompt, sc)

	if img := g.attempt(ctx, g.Primary.Name(), enhanced, func() ([]byte, string, error) {
		return g.Primary.GenerateImage(ctx, enhanced, sc.References)
	}); img != nil {
		return img
	}

	if g.Fallback == nil {
		return nil
	}
	return g.attempt(ctx, g.Fallback.Name(), prompt, func() ([]byte, string, error) {
		return g.Fallback.GenerateImage(ctx, prompt)
	})
}

// attempt runs one generate→transcode→upload chain for one engine.
func (g *Gateway) attempt(ctx context.Context, engine, prompt string, generate func() ([]byte, string, error)) *GeneratedImage {
	data, _, err := generate()
	if err != nil {
		if ai.IsTimeout(err) {
			err = ErrProviderTimeout
		}
		slog.Warn("image generation failed", "engine", engine, "error", err)
		return nil
	}

	webp, err := g.Trans.ToWebP(data)
	if err != nil {
		slog.Warn("image transcode failed", "engine", engine, "error", err)
		return nil
	}

	url, err := g.Store.UploadPublic(ctx, uploadPrefix, "webp", "image/webp", webp)
	if err != nil {
		slog.Warn("image upload failed", "engine", engine, "error", err)
		return nil
	}

	slog.Info("image generated", "engine", engine, "url", url, "prompt_len", len(prompt))
	return &GeneratedImage{URL: url, Engine: engine}
}

func impliesPerson(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, cue := range personCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}
