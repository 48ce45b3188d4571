// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for article, product, and generation fields.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxExcerptLen     = 1_000
	maxStoryTotalLen  = 100_000
	maxNameLen        = 200
	maxDescriptionLen = 5_000
	maxBriefLen       = 2_000
	maxPersonaLen     = 500
	maxPromptLen      = 2_000
)

// validateArticle checks article fields and returns the first error found.
func validateArticle(title, slugValue string, story []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slugValue) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	total := 0
	for _, p := range story {
		total += utf8.RuneCountInString(p)
	}
	if total > maxStoryTotalLen {
		return "Story is too long (max 100,000 characters)."
	}
	return ""
}

// validateProduct checks product fields and returns the first error found.
func validateProduct(name, rawURL, description, physical string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Product name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Product name is too long (max 200 characters)."
	}
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "Product URL must be a valid http(s) URL."
		}
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 5,000 characters)."
	}
	if utf8.RuneCountInString(physical) > maxDescriptionLen {
		return "Physical description is too long (max 5,000 characters)."
	}
	return ""
}

// validateGeneration checks the free-text fields of a generation request.
func validateGeneration(description, physical, brief, persona string) string {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Product description is too long (max 5,000 characters)."
	}
	if utf8.RuneCountInString(physical) > maxDescriptionLen {
		return "Physical description is too long (max 5,000 characters)."
	}
	if utf8.RuneCountInString(brief) > maxBriefLen {
		return "Visual brief is too long (max 2,000 characters)."
	}
	if utf8.RuneCountInString(persona) > maxPersonaLen {
		return "Persona is too long (max 500 characters)."
	}
	return ""
}
