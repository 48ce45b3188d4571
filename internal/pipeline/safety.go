// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"log/slog"
	"strings"
)

// DefaultBannedKeywords is the substring list scanned against the problem
// image prompt. Any match means the model leaked a product reference into a
// scene that legally must show only the pain point. A keyword list is a
// heuristic, not a guarantee — it lives behind the SafetyFilter so a
// stronger classifier can replace it without touching the pipeline.
var DefaultBannedKeywords = []string{
	"bottle", "product", "cleaning", "spray", "container", "package",
	"shelf", "label", "brand", "solution", "detergent", "cleaner", "supplies",
}

// FallbackProblemPrompt is the hardcoded product-free scene used when the
// problem prompt fails the keyword scan. Generic on purpose: a safe dull
// image beats a compliance violation.
const FallbackProblemPrompt = "A tired woman in her late 30s sitting on the edge of a kitchen chair, head resting in one hand, looking at a messy counter with visible frustration, cluttered family kitchen, late afternoon window light, candid photo"

// SafetyFilter rewrites a draft's image prompts according to a three-stage
// policy: regenerated prompts win over originals, a user visual brief wins
// over everything, and an unsanctioned product reference in the problem
// prompt triggers a hard override.
type SafetyFilter struct {
	// Banned is the substring blocklist for the problem prompt scan.
	Banned []string
}

// NewSafetyFilter returns a filter with the default keyword list.
func NewSafetyFilter() *SafetyFilter {
	return &SafetyFilter{Banned: DefaultBannedKeywords}
}

// Sanitize applies the policy to draft.ImagePrompts in place.
//
//   - regenerated, when it has exactly two entries, replaces both prompts
//     (the ad-creative refinement pass output is preferred over the copy
//     generator's one-shot prompts).
//   - visualBrief, when present, unconditionally overwrites the problem
//     prompt: user-provided visual intent always wins, and is trusted —
//     no keyword scan runs on it.
//   - otherwise, unless allowProduct is set for the selected angle, the
//     problem prompt is scanned case-insensitively and replaced wholesale
//     with FallbackProblemPrompt on any match.
//
// Returns true when the final stage forced the fallback override.
func (f *SafetyFilter) Sanitize(draft *Draft, regenerated []string, visualBrief string, allowProduct bool) bool {
	if len(regenerated) == 2 {
		draft.ImagePrompts = []string{regenerated[0], regenerated[1]}
	}

	visualBrief = strings.TrimSpace(visualBrief)
	if visualBrief != "" {
		draft.ImagePrompts[0] = visualBrief
		return false
	}

	if allowProduct {
		return false
	}

	if kw := f.match(draft.ImagePrompts[0]); kw != "" {
		slog.Warn("image prompt failed safety scan, overriding",
			"keyword", kw,
			"prompt", draft.ImagePrompts[0],
		)
		draft.ImagePrompts[0] = FallbackProblemPrompt
		return true
	}
	return false
}

// match returns the first banned keyword found in prompt, or "".
func (f *SafetyFilter) match(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, kw := range f.Banned {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
