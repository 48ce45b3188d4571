// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
// Slugs are lowercase, hyphenated, ASCII-only, and generation is idempotent:
// applying Generate to an already-valid slug returns it unchanged.
package slug

import (
	"regexp"
	"strings"
)

const maxLen = 120

var (
	// nonAlphanumeric matches anything that isn't an ASCII letter, digit,
	// space, or hyphen. Unicode is dropped rather than transliterated.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Tired of Stubborn Stains? 2026" → "tired-of-stubborn-stains-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > maxLen {
		result = strings.Trim(result[:maxLen], "-")
	}
	return result
}

// Valid reports whether s is already a well-formed slug, i.e. Generate
// would return it unchanged.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
