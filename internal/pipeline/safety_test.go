// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import "testing"

func draftWithPrompts(p0, p1 string) *Draft {
	return &Draft{
		Title:        "T",
		Story:        []string{"a"},
		ImagePrompts: []string{p0, p1},
	}
}

func TestSanitizeCleanPromptPasses(t *testing.T) {
	f := NewSafetyFilter()
	d := draftWithPrompts("A tired woman in a messy kitchen, evening light", "solution scene")

	if overridden := f.Sanitize(d, nil, "", false); overridden {
		t.Error("clean prompt was overridden")
	}
	if d.ImagePrompts[0] != "A tired woman in a messy kitchen, evening light" {
		t.Errorf("prompt changed: %q", d.ImagePrompts[0])
	}
}

func TestSanitizeBannedKeywordOverrides(t *testing.T) {
	f := NewSafetyFilter()
	for _, prompt := range []string{
		"A woman holding a spray bottle in the kitchen",
		"Shelf full of Cleaning Supplies",
		"close-up of the PRODUCT label",
	} {
		d := draftWithPrompts(prompt, "solution scene")
		if overridden := f.Sanitize(d, nil, "", false); !overridden {
			t.Errorf("Sanitize(%q) not overridden", prompt)
			continue
		}
		if d.ImagePrompts[0] != FallbackProblemPrompt {
			t.Errorf("Sanitize(%q) replaced with %q, want the literal fallback", prompt, d.ImagePrompts[0])
		}
		if d.ImagePrompts[1] != "solution scene" {
			t.Errorf("solution prompt perturbed: %q", d.ImagePrompts[1])
		}
	}
}

func TestSanitizeVisualBriefWins(t *testing.T) {
	f := NewSafetyFilter()
	// The brief itself contains banned words; it is trusted and not scanned.
	brief := "A woman comparing two bottles of detergent on a shelf"
	d := draftWithPrompts("whatever the model wrote", "solution scene")

	if overridden := f.Sanitize(d, nil, brief, false); overridden {
		t.Error("visual brief path reported an override")
	}
	if d.ImagePrompts[0] != brief {
		t.Errorf("prompt 0 = %q, want the visual brief verbatim", d.ImagePrompts[0])
	}
}

func TestSanitizeVisualBriefBeatsRegenerated(t *testing.T) {
	f := NewSafetyFilter()
	d := draftWithPrompts("original 0", "original 1")
	regen := []string{"regen 0", "regen 1"}

	f.Sanitize(d, regen, "the user brief", false)

	if d.ImagePrompts[0] != "the user brief" {
		t.Errorf("prompt 0 = %q, want the brief over the regenerated prompt", d.ImagePrompts[0])
	}
	if d.ImagePrompts[1] != "regen 1" {
		t.Errorf("prompt 1 = %q, want the regenerated prompt", d.ImagePrompts[1])
	}
}

func TestSanitizeRegeneratedReplacesOriginals(t *testing.T) {
	f := NewSafetyFilter()
	d := draftWithPrompts("original 0", "original 1")

	f.Sanitize(d, []string{"regen 0", "regen 1"}, "", false)

	if d.ImagePrompts[0] != "regen 0" || d.ImagePrompts[1] != "regen 1" {
		t.Errorf("prompts = %v, want both regenerated", d.ImagePrompts)
	}
}

func TestSanitizeRegeneratedWrongShapeIgnored(t *testing.T) {
	f := NewSafetyFilter()
	d := draftWithPrompts("original 0", "original 1")

	f.Sanitize(d, []string{"only one"}, "", false)

	if d.ImagePrompts[0] != "original 0" {
		t.Errorf("prompts = %v, want originals kept", d.ImagePrompts)
	}
}

func TestSanitizeProductAllowedSkipsScan(t *testing.T) {
	f := NewSafetyFilter()
	d := draftWithPrompts("the product unboxed in her hands", "solution scene")

	if overridden := f.Sanitize(d, nil, "", true); overridden {
		t.Error("product-allowed angle was scanned")
	}
	if d.ImagePrompts[0] != "the product unboxed in her hands" {
		t.Errorf("prompt changed: %q", d.ImagePrompts[0])
	}
}
