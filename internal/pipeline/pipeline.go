// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pipeline generates a complete advertorial draft from either a
// product URL or an uploaded ad creative: scrape, structured copy
// generation, image prompt safety, and concurrent two-image synthesis.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"adverpress/internal/ai"
	"adverpress/internal/scrape"
)

// Mode selects the pipeline entry point.
type Mode string

const (
	ModeProductLink Mode = "product_link"
	ModeAdCreative  Mode = "ad_creative"
)

// CopyClient is the vision-capable structured completion used for copy
// generation and the prompt refinement pass.
type CopyClient interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, images []ai.ImageInput) (string, error)
}

// SnapshotSource extracts product page data. Extraction never fails the
// pipeline; an unreachable page yields an empty snapshot.
type SnapshotSource interface {
	Extract(ctx context.Context, rawURL string) scrape.ProductSnapshot
}

// Request is one generation job.
type Request struct {
	Mode Mode

	// ProductURL is required in product-link mode.
	ProductURL string
	// Angle selects one of the fixed narrative templates; defaults to
	// "before" when unknown.
	Angle string
	// Persona filters the whole article's voice in ad-creative mode.
	Persona string

	// ProductDescription overrides scraped page text when present.
	ProductDescription string
	// PhysicalDescription of the product, injected into solution image
	// prompts verbatim.
	PhysicalDescription string

	// ProductImages are up to three reference photos, in seller order.
	ProductImages []ai.ImageInput
	// ProductMainImage, when set, is attached first.
	ProductMainImage *ai.ImageInput
	// CreativeImage is required in ad-creative mode.
	CreativeImage *ai.ImageInput

	// VisualBrief is the user-authored scene for the problem image. It
	// bypasses the safety scan.
	VisualBrief string
}

// Validate checks mode-specific required fields.
func (r *Request) Validate() error {
	switch r.Mode {
	case ModeProductLink:
		if strings.TrimSpace(r.ProductURL) == "" {
			return fmt.Errorf("%w: product_url is required", ErrValidation)
		}
	case ModeAdCreative:
		if r.CreativeImage == nil || len(r.CreativeImage.Data) == 0 {
			return fmt.Errorf("%w: creative image is required", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, r.Mode)
	}
	return nil
}

// Result is one finished pipeline run. Images always has exactly two
// entries, correlated to Draft.ImagePrompts by index; a nil entry means
// both providers failed for that slot and it can be retried individually.
type Result struct {
	Draft  *Draft
	Images []*GeneratedImage

	// DefaultedFields lists draft fields the decoder had to repair.
	DefaultedFields []string
}

// ImageURLs returns the non-nil image URLs in slot order.
func (r *Result) ImageURLs() []string {
	urls := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if img != nil {
			urls = append(urls, img.URL)
		}
	}
	return urls
}

// Pipeline is the orchestrator. One Run call serves one requester; nothing
// is shared or cached across runs.
type Pipeline struct {
	Copy     CopyClient
	Source   SnapshotSource
	Gateway  *Gateway
	Safety   *SafetyFilter
	composer Composer
}

// New wires a pipeline with the default safety filter.
func New(copyClient CopyClient, source SnapshotSource, gateway *Gateway) *Pipeline {
	return &Pipeline{
		Copy:    copyClient,
		Source:  source,
		Gateway: gateway,
		Safety:  NewSafetyFilter(),
	}
}

// Run validates the request and dispatches on mode.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	switch req.Mode {
	case ModeAdCreative:
		return p.runAdCreative(ctx, req)
	default:
		return p.runProductLink(ctx, req)
	}
}

// runProductLink is the product-URL flow: scrape, one copy generation call
// with the product photos attached, safety pass, two concurrent images.
func (p *Pipeline) runProductLink(ctx context.Context, req Request) (*Result, error) {
	snap := p.Source.Extract(ctx, req.ProductURL)

	angle := AngleByName(req.Angle)
	attachments := req.attachments()

	composed := p.composer.ComposeProductLink(snap, angle, req.ProductDescription, attachments)
	draft, defaulted, err := p.generateDraft(ctx, composed)
	if err != nil {
		return nil, err
	}

	p.Safety.Sanitize(draft, nil, req.VisualBrief, angle.ProductAllowed)
	images := p.synthesizePair(ctx, draft, req)

	return &Result{Draft: draft, Images: images, DefaultedFields: defaulted}, nil
}

// runAdCreative is the uploaded-creative flow. After the main generation a
// second call rebuilds the image prompts from the story hook; the rebuilt
// prompts, when they parse, are preferred over the one-shot ones.
func (p *Pipeline) runAdCreative(ctx context.Context, req Request) (*Result, error) {
	composed := p.composer.ComposeAdCreative(*req.CreativeImage, req.Persona, req.ProductDescription, req.VisualBrief, req.ProductImages)
	draft, defaulted, err := p.generateDraft(ctx, composed)
	if err != nil {
		return nil, err
	}

	var regenerated []string
	if draft.Hook != "" {
		regen := p.composer.ComposeImagePromptRegen(draft.Hook)
		completion, rerr := p.Copy.GenerateJSON(ctx, regen.System, regen.User, nil)
		if rerr != nil {
			// Best effort; the one-shot prompts stand.
			slog.Warn("image prompt regeneration failed", "error", rerr)
		} else {
			regenerated = DecodeImagePrompts(completion)
		}
	}

	p.Safety.Sanitize(draft, regenerated, req.VisualBrief, false)
	images := p.synthesizePair(ctx, draft, req)

	return &Result{Draft: draft, Images: images, DefaultedFields: defaulted}, nil
}

// RegenerateImage reruns synthesis for a single slot of an existing draft,
// leaving the other slot untouched. prompt may override the stored one.
func (p *Pipeline) RegenerateImage(ctx context.Context, prompt string, slot int, req Request) (*GeneratedImage, error) {
	if slot != 0 && slot != 1 {
		return nil, fmt.Errorf("%w: image slot must be 0 or 1", ErrValidation)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrValidation)
	}

	role := RoleProblem
	if slot == 1 {
		role = RoleSolution
	}
	if role == RoleProblem && req.VisualBrief == "" {
		if kw := p.Safety.match(prompt); kw != "" && !AngleByName(req.Angle).ProductAllowed {
			slog.Warn("regeneration prompt failed safety scan, overriding", "keyword", kw)
			prompt = FallbackProblemPrompt
		}
	}

	return p.Gateway.Synthesize(ctx, prompt, SynthesisContext{
		Role:                role,
		PhysicalDescription: req.PhysicalDescription,
		References:          req.references(role),
	}), nil
}

// generateDraft runs one completion call and decodes it. Malformed output
// is terminal: a generative call is never silently retried.
func (p *Pipeline) generateDraft(ctx context.Context, composed Composed) (*Draft, []string, error) {
	completion, err := p.Copy.GenerateJSON(ctx, composed.System, composed.User, composed.Attachments)
	if err != nil {
		if ai.IsTimeout(err) {
			return nil, nil, fmt.Errorf("%w: copy generation: %v", ErrProviderTimeout, err)
		}
		return nil, nil, fmt.Errorf("copy generation: %w", err)
	}

	draft, defaulted, err := DecodeDraft(completion)
	if err != nil {
		return nil, nil, err
	}
	if len(defaulted) > 0 {
		slog.Warn("draft fields defaulted", "fields", defaulted, "title", draft.Title)
	}
	return draft, defaulted, nil
}

// synthesizePair runs both image slots concurrently and correlates results
// back by index. A failed slot stays nil; it never shifts the other slot.
func (p *Pipeline) synthesizePair(ctx context.Context, draft *Draft, req Request) []*GeneratedImage {
	images := make([]*GeneratedImage, 2)

	var g errgroup.Group
	for i := range images {
		role := RoleProblem
		if i == 1 {
			role = RoleSolution
		}
		g.Go(func() error {
			images[i] = p.Gateway.Synthesize(ctx, draft.ImagePrompts[i], SynthesisContext{
				Role:                role,
				PhysicalDescription: req.PhysicalDescription,
				References:          req.references(role),
			})
			return nil
		})
	}
	_ = g.Wait()

	return images
}

// attachments builds the vision attachment list for product-link mode:
// main image first, then the remaining product photos in order.
func (r *Request) attachments() []ai.ImageInput {
	var out []ai.ImageInput
	if r.ProductMainImage != nil {
		out = append(out, *r.ProductMainImage)
	}
	out = append(out, r.ProductImages...)
	return out
}

// references returns the grounding images for one synthesis slot. Problem
// images get none: the product must not be visible, so nothing to ground.
func (r *Request) references(role ImageRole) []ai.ImageInput {
	if role == RoleProblem {
		return nil
	}
	if r.ProductMainImage != nil {
		return []ai.ImageInput{*r.ProductMainImage}
	}
	if len(r.ProductImages) > 0 {
		return r.ProductImages[:1]
	}
	if r.CreativeImage != nil {
		return []ai.ImageInput{*r.CreativeImage}
	}
	return nil
}
