// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"adverpress/internal/cache"
	"adverpress/internal/markdown"
	"adverpress/internal/models"
	"adverpress/internal/pipeline"
	"adverpress/internal/store"
)

// Public groups the reader-facing JSON API. Responses are cached in
// Valkey; requests carrying utm_* parameters bypass the cache because
// their CTA links differ.
type Public struct {
	articleStore  *store.ArticleStore
	categoryStore *store.CategoryStore
	pageCache     *cache.PageCache
	siteBaseURL   string
}

// NewPublic creates a new Public handler group. siteBaseURL is the public
// origin of the reader site, used for canonical article links; empty means
// the links are omitted from responses.
func NewPublic(articles *store.ArticleStore, categories *store.CategoryStore, pageCache *cache.PageCache, siteBaseURL string) *Public {
	return &Public{
		articleStore:  articles,
		categoryStore: categories,
		pageCache:     pageCache,
		siteBaseURL:   strings.TrimRight(siteBaseURL, "/"),
	}
}

// articleSummary is one entry in a listing response.
type articleSummary struct {
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	URL              string     `json:"url,omitempty"`
	Category         string     `json:"category"`
	Author           string     `json:"author"`
	AdvertorialLabel string     `json:"advertorial_label"`
	Excerpt          string     `json:"excerpt"`
	ImageURL         string     `json:"image_url,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
}

// articlePage is the full reader payload for one advertorial.
type articlePage struct {
	articleSummary
	Hook             string              `json:"hook"`
	StoryHTML        []string            `json:"story_html"`
	Benefits         []pipeline.Benefit  `json:"benefits"`
	UrgencyBox       pipeline.UrgencyBox `json:"urgency_box"`
	Comments         []pipeline.Comment  `json:"comments"`
	CTAText          string              `json:"cta_text"`
	CTAURL           string              `json:"cta_url"`
	ImageProblemURL  string              `json:"image_problem_url,omitempty"`
	ImageSolutionURL string              `json:"image_solution_url,omitempty"`
	ExpiresAt        *time.Time          `json:"expires_at,omitempty"`
	CountdownSeconds int64               `json:"countdown_seconds,omitempty"`
}

// Categories lists the browsable categories with published article counts.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Articles lists published articles, optionally filtered by ?category=.
func (p *Public) Articles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")
	key := cache.ListKey(category)

	if cached, ok := p.pageCache.Get(ctx, key); ok {
		writeCachedJSON(w, cached)
		return
	}

	articles, err := p.articleStore.ListPublished(category)
	if err != nil {
		slog.Error("list published articles failed", "error", err, "category", category)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	summaries := make([]articleSummary, 0, len(articles))
	for i := range articles {
		summaries = append(summaries, p.summarize(&articles[i]))
	}

	body, err := json.Marshal(map[string]any{"articles": summaries})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	p.pageCache.Set(ctx, key, body)
	writeCachedJSON(w, body)
}

// Article returns one published article by slug, with the story rendered
// to HTML and the CTA link carrying any inbound utm_* parameters.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")
	utm := utmParams(r.URL.Query())

	// Cached bodies are built without UTM propagation, so serve them
	// only to untagged requests.
	if len(utm) == 0 {
		if cached, ok := p.pageCache.Get(ctx, cache.ArticleKey(slugParam)); ok {
			writeCachedJSON(w, cached)
			return
		}
	}

	article, err := p.articleStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find article by slug failed", "error", err, "slug", slugParam)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if article == nil {
		errorJSON(w, http.StatusNotFound, "article not found")
		return
	}

	page := p.buildPage(article, utm)
	body, err := json.Marshal(page)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	if len(utm) == 0 {
		p.pageCache.Set(ctx, cache.ArticleKey(slugParam), body)
	}
	writeCachedJSON(w, body)
}

// buildPage assembles the full reader payload for one article.
func (p *Public) buildPage(article *models.Article, utm url.Values) articlePage {
	page := articlePage{
		articleSummary: p.summarize(article),
		Hook:           article.Hook,
		StoryHTML:      renderStory(article.Story),
		Benefits:       article.Benefits,
		UrgencyBox:     article.UrgencyBox,
		Comments:       article.Comments,
		CTAText:        article.CTAText,
		CTAURL:         buildCTAURL(article.CTAURL, utm),
	}
	if article.ImageProblemURL != nil {
		page.ImageProblemURL = *article.ImageProblemURL
	}
	if article.ImageSolutionURL != nil {
		page.ImageSolutionURL = *article.ImageSolutionURL
	}
	if article.ExpiresAt != nil {
		page.ExpiresAt = article.ExpiresAt
		if remaining := time.Until(*article.ExpiresAt); remaining > 0 {
			page.CountdownSeconds = int64(remaining.Seconds())
		}
	}
	return page
}

// summarize builds the listing view of an article. The problem image is
// the cover when present, the solution image otherwise.
func (p *Public) summarize(article *models.Article) articleSummary {
	s := articleSummary{
		Title:            article.Title,
		Slug:             article.Slug,
		Category:         article.Category,
		Author:           article.Author,
		AdvertorialLabel: article.AdvertorialLabel,
		Excerpt:          article.Excerpt,
		PublishedAt:      article.PublishedAt,
	}
	if urls := article.ImageURLs(); len(urls) > 0 {
		s.ImageURL = urls[0]
	}
	if p.siteBaseURL != "" {
		s.URL = p.siteBaseURL + "/" + article.Slug
	}
	return s
}

// renderStory converts the story paragraphs from markdown to HTML. A
// paragraph that fails to render is escaped by goldmark itself, so the
// only failure mode here is an empty result, which is skipped.
func renderStory(story []string) []string {
	out := make([]string, 0, len(story))
	for _, paragraph := range story {
		html, err := markdown.ToHTML(paragraph)
		if err != nil {
			slog.Warn("story paragraph render failed", "error", err)
			continue
		}
		out = append(out, strings.TrimSpace(html))
	}
	return out
}

// utmParams extracts the utm_* tracking parameters from a query string.
func utmParams(query url.Values) url.Values {
	utm := url.Values{}
	for key, vals := range query {
		if strings.HasPrefix(key, "utm_") {
			utm[key] = vals
		}
	}
	return utm
}

// buildCTAURL appends inbound utm_* parameters to the article's CTA link
// so attribution survives the click-through.
func buildCTAURL(ctaURL string, utm url.Values) string {
	if ctaURL == "" || len(utm) == 0 {
		return ctaURL
	}
	u, err := url.Parse(ctaURL)
	if err != nil {
		return ctaURL
	}
	q := u.Query()
	for key, vals := range utm {
		for _, v := range vals {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// writeCachedJSON writes a pre-encoded JSON body.
func writeCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
