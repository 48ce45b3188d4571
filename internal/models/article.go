// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"adverpress/internal/pipeline"
)

// ArticleStatus represents the publishing state of an advertorial.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Article is a persisted advertorial: the generated draft plus the image
// URLs, publication state, and the countdown deadline shown to readers.
// Story, benefits, urgency box and comments are stored as JSONB.
type Article struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	Slug             string              `json:"slug"`
	Category         string              `json:"category"`
	Author           string              `json:"author"`
	AdvertorialLabel string              `json:"advertorial_label"`
	Excerpt          string              `json:"excerpt"`
	Hook             string              `json:"hook"`
	Story            []string            `json:"story"`
	Benefits         []pipeline.Benefit  `json:"benefits"`
	UrgencyBox       pipeline.UrgencyBox `json:"urgency_box"`
	Comments         []pipeline.Comment  `json:"comments"`
	CTAText          string              `json:"cta_text"`
	CTAURL           string              `json:"cta_url"`
	ImagePrompts     []string            `json:"image_prompts"`

	// ImageProblemURL and ImageSolutionURL are nullable: a slot whose
	// synthesis failed stays empty until regenerated from the admin UI.
	ImageProblemURL  *string `json:"image_problem_url,omitempty"`
	ImageSolutionURL *string `json:"image_solution_url,omitempty"`
	ImageEngine      string  `json:"image_engine,omitempty"`

	Status ArticleStatus `json:"status"`
	// ExpiresAt drives the reader-facing countdown.
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ImageURLs returns the stored image URLs in slot order (problem, solution),
// skipping empty slots.
func (a *Article) ImageURLs() []string {
	var urls []string
	if a.ImageProblemURL != nil && *a.ImageProblemURL != "" {
		urls = append(urls, *a.ImageProblemURL)
	}
	if a.ImageSolutionURL != nil && *a.ImageSolutionURL != "" {
		urls = append(urls, *a.ImageSolutionURL)
	}
	return urls
}
