// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"adverpress/internal/slug"
)

// Benefit is one product benefit bullet in the article.
type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UrgencyBox is the countdown/scarcity callout rendered mid-article.
type UrgencyBox struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Comment is one fictional reader comment displayed under the article.
type Comment struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// Draft is the structured article returned by the copy generator, before
// images are synthesised. ImagePrompts always has exactly two entries after
// decoding: index 0 is the "problem" image, index 1 the "solution" image.
type Draft struct {
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Category         string     `json:"category"`
	Author           string     `json:"author"`
	AdvertorialLabel string     `json:"advertorial_label"`
	Excerpt          string     `json:"excerpt"`
	Hook             string     `json:"hook"`
	Story            []string   `json:"story"`
	Benefits         []Benefit  `json:"benefits"`
	UrgencyBox       UrgencyBox `json:"urgency_box"`
	Comments         []Comment  `json:"comments"`
	CTAText          string     `json:"cta_text"`
	ImagePrompts     []string   `json:"image_prompts"`

	// Optional infographic block; empty when the model omitted it.
	InfographicTitle  string   `json:"infographic_title,omitempty"`
	InfographicPoints []string `json:"infographic_points,omitempty"`
}

// rawDraft mirrors Draft but keeps the fields the model habitually gets
// wrong as raw JSON, so they can be coerced instead of failing the decode.
type rawDraft struct {
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	Category         string          `json:"category"`
	Author           string          `json:"author"`
	AdvertorialLabel string          `json:"advertorial_label"`
	Excerpt          string          `json:"excerpt"`
	Hook             string          `json:"hook"`
	Story            json.RawMessage `json:"story"`
	Benefits         json.RawMessage `json:"benefits"`
	UrgencyBox       json.RawMessage `json:"urgency_box"`
	Comments         json.RawMessage `json:"comments"`
	CTAText          string          `json:"cta_text"`
	ImagePrompts     json.RawMessage `json:"image_prompts"`

	InfographicTitle  string   `json:"infographic_title"`
	InfographicPoints []string `json:"infographic_points"`
}

// DecodeDraft parses a completion into a Draft. The contract is enforced by
// prompt instruction only, so the model can and does deviate; decode is
// strict about JSON syntax (a completion that is not JSON fails with
// ErrGenerationMalformed, never retried) but tolerant about shape:
//
//   - story given as a bare string is wrapped in a one-element slice
//   - missing/invalid benefits default to a single empty benefit
//   - missing/invalid comments default to an empty slice
//   - missing/invalid urgency_box defaults to {"", ""}
//   - image_prompts is truncated or padded to exactly two entries
//   - a missing or malformed slug is derived from the title
//
// The second return value lists the field names that were defaulted, so
// callers can log how far the model drifted from the contract.
func DecodeDraft(completion string) (*Draft, []string, error) {
	var raw rawDraft
	if err := json.Unmarshal([]byte(stripCodeFence(completion)), &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGenerationMalformed, err)
	}

	var defaulted []string
	d := &Draft{
		Title:             strings.TrimSpace(raw.Title),
		Slug:              strings.TrimSpace(raw.Slug),
		Category:          strings.TrimSpace(raw.Category),
		Author:            strings.TrimSpace(raw.Author),
		AdvertorialLabel:  strings.TrimSpace(raw.AdvertorialLabel),
		Excerpt:           strings.TrimSpace(raw.Excerpt),
		Hook:              strings.TrimSpace(raw.Hook),
		CTAText:           strings.TrimSpace(raw.CTAText),
		InfographicTitle:  strings.TrimSpace(raw.InfographicTitle),
		InfographicPoints: raw.InfographicPoints,
	}

	if d.Title == "" {
		return nil, nil, fmt.Errorf("%w: title missing", ErrGenerationMalformed)
	}

	// story: accept ["a","b"] or a bare "a"; must end up non-empty.
	d.Story = coerceStringSlice(raw.Story)
	if len(d.Story) == 0 {
		return nil, nil, fmt.Errorf("%w: story missing or empty", ErrGenerationMalformed)
	}

	if err := json.Unmarshal(raw.Benefits, &d.Benefits); err != nil || len(d.Benefits) == 0 {
		d.Benefits = []Benefit{{}}
		defaulted = append(defaulted, "benefits")
	}

	if err := json.Unmarshal(raw.Comments, &d.Comments); err != nil {
		d.Comments = []Comment{}
		defaulted = append(defaulted, "comments")
	}

	if err := json.Unmarshal(raw.UrgencyBox, &d.UrgencyBox); err != nil {
		d.UrgencyBox = UrgencyBox{}
		defaulted = append(defaulted, "urgency_box")
	}

	// image_prompts: exactly two entries before synthesis runs.
	d.ImagePrompts = coerceStringSlice(raw.ImagePrompts)
	switch {
	case len(d.ImagePrompts) > 2:
		d.ImagePrompts = d.ImagePrompts[:2]
		defaulted = append(defaulted, "image_prompts")
	case len(d.ImagePrompts) < 2:
		for len(d.ImagePrompts) < 2 {
			if len(d.ImagePrompts) == 0 {
				d.ImagePrompts = append(d.ImagePrompts, FallbackProblemPrompt)
			} else {
				d.ImagePrompts = append(d.ImagePrompts, "A happy person at home enjoying the result of using "+d.Title+", bright natural light")
			}
		}
		defaulted = append(defaulted, "image_prompts")
	}

	if !slug.Valid(d.Slug) {
		d.Slug = slug.Generate(d.Title)
		defaulted = append(defaulted, "slug")
	}

	return d, defaulted, nil
}

// coerceStringSlice accepts a JSON array of strings or a bare JSON string.
// Empty entries are dropped. Returns nil for anything else.
func coerceStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		out := many[:0]
		for _, s := range many {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			return []string{one}
		}
	}
	return nil
}

// jsonUnmarshalLenient unmarshals a completion after fence stripping.
func jsonUnmarshalLenient(completion string, v any) error {
	return json.Unmarshal([]byte(stripCodeFence(completion)), v)
}

// stripCodeFence removes a surrounding markdown code fence. JSON mode makes
// fences rare, but a stray ```json wrapper should not abort a whole run.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
