// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"fmt"
	"strings"

	"adverpress/internal/ai"
	"adverpress/internal/scrape"
)

// ClothingOptions is the closed set of outfit descriptions the copy model
// and the image prompts are allowed to use. Keeping wardrobe to five muted
// literals is what makes a two-image article look like one photo shoot
// instead of two stock photos.
var ClothingOptions = []string{
	"a plain light-grey cotton t-shirt and dark jeans",
	"a simple beige knit sweater",
	"a plain white linen shirt",
	"a soft pastel-blue blouse",
	"a plain olive-green long-sleeve top",
}

// BannedClothingStyles lists colors and patterns that read as branded or
// clash with product packaging in generated photos.
var BannedClothingStyles = []string{
	"red", "orange", "neon colors", "turquoise",
	"stripes", "plaid", "floral patterns", "logos or printed text",
}

// SystemPrompt is the fixed copywriting persona for every generation call.
const SystemPrompt = `You are a senior direct-response copywriter for native advertising. You write long-form advertorials that read like genuine editorial stories but are engineered to sell.

Hard rules you must never break:
- NEVER make absolute health, medical, financial or income claims. No "cures", "guaranteed", "100%", "clinically proven" unless the source material explicitly provides a citation.
- Use hedging language for results: "can help", "many users report", "designed to".
- Be aggressive and emotional in tone, but stay within advertising law: real-sounding, specific, personal stories; no fabricated statistics; no fake expert credentials.
- Write in the language of the product page you are given. If unclear, write in English.
- Output ONLY the JSON object requested. No markdown fences, no commentary.`

// draftSchema is the output contract embedded in every user prompt. Field
// names here must match the Draft JSON tags exactly.
const draftSchema = `Return ONE JSON object with EXACTLY these fields:
{
  "title": "curiosity-driven headline, no clickbait ALL CAPS",
  "slug": "lowercase-ascii-hyphenated-slug",
  "category": "one short category word",
  "author": "a plausible full name for the byline",
  "advertorial_label": "short disclosure label, e.g. 'Advertorial'",
  "excerpt": "1-2 sentence teaser",
  "hook": "the single strongest emotional hook of the story, one sentence",
  "story": ["paragraph 1", "paragraph 2", "... 6 to 10 paragraphs total"],
  "benefits": [{"title": "...", "description": "..."}, "... 3 to 5 items"],
  "urgency_box": {"title": "...", "text": "scarcity/urgency message"},
  "comments": [{"name": "...", "text": "...", "time": "e.g. '2 hours ago'"}, "... 4 to 6 items"],
  "cta_text": "button text, imperative, under 6 words",
  "image_prompts": ["photographic prompt for Image 1 (the problem)", "photographic prompt for Image 2 (the solution)"]
}`

// Composer builds the system/user prompt pair and ordered attachments for
// one generation call.
type Composer struct{}

// Composed is the ready-to-send input for the copy generator.
type Composed struct {
	System      string
	User        string
	Attachments []ai.ImageInput
}

func clothingBlock() string {
	var b strings.Builder
	b.WriteString("Clothing in image prompts: any person MUST wear exactly one of these five outfits, quoted verbatim:\n")
	for _, c := range ClothingOptions {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("Banned clothing colors and patterns, never use: ")
	b.WriteString(strings.Join(BannedClothingStyles, ", "))
	b.WriteString(".")
	return b.String()
}

func snapshotBlock(snap scrape.ProductSnapshot, productDescription string) string {
	var b strings.Builder
	b.WriteString("PRODUCT DATA:\n")
	if snap.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", snap.URL)
	}
	if snap.Title != "" {
		fmt.Fprintf(&b, "Page title: %s\n", snap.Title)
	}
	if snap.Description != "" {
		fmt.Fprintf(&b, "Page description: %s\n", snap.Description)
	}
	if snap.Price != "" {
		fmt.Fprintf(&b, "Price found on page: %s\n", snap.Price)
	}
	if snap.BodyExcerpt != "" {
		fmt.Fprintf(&b, "Page text excerpt:\n%s\n", snap.BodyExcerpt)
	}
	if productDescription != "" {
		fmt.Fprintf(&b, "Seller-provided product description (authoritative, prefer over page text):\n%s\n", productDescription)
	}
	if b.Len() == len("PRODUCT DATA:\n") {
		b.WriteString("(no product page data could be extracted; rely on the attached images and write generically but plausibly)\n")
	}
	return b.String()
}

// ComposeProductLink builds the prompt for product-link mode: snapshot data,
// the selected angle template, and the output schema. Attachments are the
// product images in request order, main image first when present.
func (Composer) ComposeProductLink(snap scrape.ProductSnapshot, angle Angle, productDescription string, attachments []ai.ImageInput) Composed {
	var b strings.Builder
	b.WriteString(snapshotBlock(snap, productDescription))
	b.WriteString("\nNARRATIVE ANGLE: ")
	b.WriteString(angle.Name)
	b.WriteString("\n")
	b.WriteString(angle.Focus)
	b.WriteString("\n\nIMAGE PROMPT RULES:\nImage 1 (problem): ")
	b.WriteString(angle.Image1)
	b.WriteString("\nImage 2 (solution): ")
	b.WriteString(angle.Image2)
	b.WriteString("\nBoth image prompts must be concrete photographic scene descriptions: subject, setting, lighting, camera feel. No abstract concepts.\n")
	b.WriteString(clothingBlock())
	b.WriteString("\n\n")
	b.WriteString(draftSchema)
	return Composed{System: SystemPrompt, User: b.String(), Attachments: attachments}
}

// ComposeAdCreative builds the prompt for ad-creative mode. The creative is
// always the first attachment; the model is told to read its angle and tone
// before writing, and to filter everything through the persona when one is
// given.
func (Composer) ComposeAdCreative(creative ai.ImageInput, persona, productDescription, visualBrief string, extra []ai.ImageInput) Composed {
	var b strings.Builder
	b.WriteString("The FIRST attached image is an existing advertising creative. Analyze it before writing: what angle does it take, what emotion does it target, what promise does it make? Write the advertorial as the long-form continuation of that exact angle and tone.\n\n")
	if persona != "" {
		fmt.Fprintf(&b, "PERSONA: write the entire article in the voice of %s. Every paragraph, every comment, the urgency box — all of it filtered through this persona.\n\n", persona)
	}
	if productDescription != "" {
		fmt.Fprintf(&b, "PRODUCT DESCRIPTION (authoritative):\n%s\n\n", productDescription)
	}
	if visualBrief != "" {
		fmt.Fprintf(&b, "The user supplied this visual brief for Image 1; keep your story consistent with it:\n%s\n\n", visualBrief)
	}
	b.WriteString("IMAGE PROMPT RULES:\nImage 1 (problem): a person experiencing the pain point the creative addresses. ")
	b.WriteString(noProductClause)
	b.WriteString("\nImage 2 (solution): the same person relieved, with the product visible in use.\n")
	b.WriteString("Both image prompts must be concrete photographic scene descriptions: subject, setting, lighting, camera feel.\n")
	b.WriteString(clothingBlock())
	b.WriteString("\n\n")
	b.WriteString(draftSchema)

	attachments := append([]ai.ImageInput{creative}, extra...)
	return Composed{System: SystemPrompt, User: b.String(), Attachments: attachments}
}

// ComposeImagePromptRegen builds the refinement pass that rebuilds the two
// image prompts from the story hook. Used in ad-creative mode, where the
// one-shot prompts tend to describe the creative instead of a scene.
func (Composer) ComposeImagePromptRegen(hook string) Composed {
	var b strings.Builder
	b.WriteString("Story hook: ")
	b.WriteString(hook)
	b.WriteString("\n\nWrite two photographic image prompts for this story.\n")
	b.WriteString("Prompt 1 (problem): a person living the pain point in the hook. ")
	b.WriteString(noProductClause)
	b.WriteString("\nPrompt 2 (solution): the same person after, relieved, product visible in use.\n")
	b.WriteString(clothingBlock())
	b.WriteString("\n\nReturn ONE JSON object: {\"image_prompts\": [\"prompt 1\", \"prompt 2\"]}")
	return Composed{System: SystemPrompt, User: b.String()}
}

// DecodeImagePrompts parses the refinement pass completion. Unlike the main
// draft decode this is best-effort: any shape problem returns nil and the
// caller keeps the original prompts.
func DecodeImagePrompts(completion string) []string {
	var out struct {
		ImagePrompts []string `json:"image_prompts"`
	}
	if err := jsonUnmarshalLenient(completion, &out); err != nil {
		return nil
	}
	if len(out.ImagePrompts) != 2 {
		return nil
	}
	for _, p := range out.ImagePrompts {
		if strings.TrimSpace(p) == "" {
			return nil
		}
	}
	return out.ImagePrompts
}
