// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"sort"
	"strings"
)

// Angle is a fixed narrative/visual template. It controls both the emotional
// focus of the story and the literal content rules for the two article
// images. For angles where ProductAllowed is false, the Image1 instruction
// mandates a product-free scene — this is the seed for the downstream
// safety filter, which enforces the same rule on the model's output.
type Angle struct {
	Name string

	// Focus is the emotional focus of the narrative.
	Focus string

	// Image1 is the literal instruction for the "problem" image prompt.
	Image1 string

	// Image2 is the literal instruction for the "solution" image prompt.
	Image2 string

	// ProductAllowed reports whether the product may appear in Image 1.
	ProductAllowed bool
}

// noProductClause is the mandatory Image-1 restriction for angles outside
// the product-allowed set. Compliance is a legal requirement (an ad image
// must not pass off a branded product as editorial pain-point photography),
// so the clause is explicit and non-negotiable in the template text.
const noProductClause = "Image 1 must contain NO product, NO packaging, NO bottles or containers, and NO brand references of any kind — only the person and the everyday situation."

// angles holds the six fixed templates, keyed by name.
var angles = map[string]Angle{
	"before": {
		Name:  "before",
		Focus: "Dwell on the frustration of life before the product: the wasted hours, the small daily defeats, the feeling of being stuck.",
		Image1: "Image 1 shows the low point: the person visibly worn down in the middle of the chore, surrounded by the mess they cannot get ahead of. " +
			noProductClause,
		Image2: "Image 2 shows the same setting transformed: the person relaxed and smiling, the product in use, the space visibly clean and calm.",
	},
	"before-after": {
		Name:           "before-after",
		Focus:          "Contrast the before and after as directly as possible; the story pivots on the single moment the product arrived.",
		Image1:         "Image 1 shows the 'before' half of the contrast: the person mid-struggle with the chore, the product just arrived but still unopened at the edge of the frame.",
		Image2:         "Image 2 shows the 'after' half: the same person, same room, visibly transformed result, product in hand.",
		ProductAllowed: true,
	},
	"in-use": {
		Name:           "in-use",
		Focus:          "Narrate a single real session of using the product, minute by minute, with sensory detail.",
		Image1:         "Image 1 shows the very first use: the person just starting with the product, skeptical expression, the problem still visible around them.",
		Image2:         "Image 2 shows the result at the end of the session: the finished outcome, the person satisfied, product visible.",
		ProductAllowed: true,
	},
	"in-hand": {
		Name:           "in-hand",
		Focus:          "Center the story on the moment of unboxing and first impressions; build trust through tactile, concrete observations.",
		Image1:         "Image 1 shows the product freshly unboxed in the person's hands, examined closely at a kitchen table.",
		Image2:         "Image 2 shows the product put to work for the first time, with a visible result starting to appear.",
		ProductAllowed: true,
	},
	"after": {
		Name:           "after",
		Focus:          "Start the story after the transformation already happened and work backwards; lead with the enviable result.",
		Image1:         "Image 1 shows the enviable end state with the product present in the scene: a spotless, calm home and a relaxed person enjoying it.",
		Image2:         "Image 2 shows a close-up of the product in its place in that home, clearly part of the new routine.",
		ProductAllowed: true,
	},
	"story": {
		Name:  "story",
		Focus: "Tell a personal first-person discovery story: an ordinary person at the end of their rope who stumbled on the product through a friend or a comment online.",
		Image1: "Image 1 shows the narrator at their lowest point in the story: exhausted, overwhelmed by the daily situation, in an authentic lived-in home. " +
			noProductClause,
		Image2: "Image 2 shows the narrator weeks later: visibly relieved, using the product in the same home, everything under control.",
	},
}

// AngleNames lists all template names.
func AngleNames() []string {
	names := make([]string, 0, len(angles))
	for name := range angles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AngleByName returns the template for name, falling back to "before"
// (the most conservative template: product-free Image 1) for unknown or
// empty names.
func AngleByName(name string) Angle {
	if a, ok := angles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return a
	}
	return angles["before"]
}
