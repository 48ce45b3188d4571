// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a stored product profile. Generation requests may reference a
// product instead of repeating the URL and descriptions each time, and the
// CTA link of generated articles points at its URL.
type Product struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	URL  string    `json:"url"`

	// Description is the seller's copy, preferred over scraped page text.
	Description string `json:"description"`
	// PhysicalDescription is what the product looks like, spliced verbatim
	// into solution image prompts.
	PhysicalDescription string `json:"physical_description"`

	// ImageURLs are reference photos (up to three are attached to
	// generation calls). MainImageURL, when set, is attached first.
	ImageURLs    []string `json:"image_urls"`
	MainImageURL string   `json:"main_image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
