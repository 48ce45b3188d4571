// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scrape extracts product information from merchant pages.
// Scraping is best-effort context for the generation pipeline, not a hard
// dependency: every failure mode (network, timeout, parse) yields an empty
// snapshot instead of an error, so a dead product page never blocks a
// generation run.
package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// fetchTimeout bounds the whole page download. Merchant pages behind
	// slow CDNs are not worth waiting longer for.
	fetchTimeout = 10 * time.Second

	// userAgent mimics a desktop browser; many shops serve bot requests
	// an empty shell or a captcha page.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	// maxBodyExcerpt caps the amount of page text forwarded to the model.
	maxBodyExcerpt = 2000
)

// ProductSnapshot is the ephemeral result of scraping one product page.
// Fields are empty strings when extraction found nothing. Immutable once built.
type ProductSnapshot struct {
	URL         string
	Title       string
	Description string
	Price       string
	BodyExcerpt string
}

// Extractor fetches and parses product pages.
type Extractor struct {
	client *http.Client
}

// NewExtractor creates an Extractor with the bounded fetch timeout.
func NewExtractor() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Extract downloads the product page and pulls out title, description,
// price, and a body excerpt. Never returns an error: on any failure the
// snapshot simply has empty fields.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ProductSnapshot {
	snap := ProductSnapshot{URL: pageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		slog.Warn("scrape: bad product url", "url", pageURL, "error", err)
		return snap
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		slog.Warn("scrape: fetch failed", "url", pageURL, "error", err)
		return snap
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("scrape: non-200 response", "url", pageURL, "status", resp.StatusCode)
		return snap
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		slog.Warn("scrape: parse failed", "url", pageURL, "error", err)
		return snap
	}

	snap.Title = extractTitle(doc)
	snap.Description = extractDescription(doc)
	snap.Price = extractPrice(doc)
	snap.BodyExcerpt = extractBodyExcerpt(doc)

	slog.Debug("scrape: snapshot built",
		"url", pageURL,
		"title", snap.Title,
		"price", snap.Price,
		"excerpt_len", len(snap.BodyExcerpt),
	)
	return snap
}

// extractTitle tries, in order: first <h1>, page <title>, og:title.
func extractTitle(doc *goquery.Document) string {
	if h1 := collapseWhitespace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if title := collapseWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return collapseWhitespace(og)
	}
	return ""
}

// extractDescription tries the meta description, then og:description, then
// the first non-empty paragraph.
func extractDescription(doc *goquery.Document) string {
	if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if d := collapseWhitespace(meta); d != "" {
			return d
		}
	}
	if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if d := collapseWhitespace(og); d != "" {
			return d
		}
	}

	var para string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := collapseWhitespace(s.Text()); t != "" {
			para = t
			return false
		}
		return true
	})
	return para
}

// priceAttr matches class or attribute values that signal a price element.
var priceAttr = regexp.MustCompile(`(?i)price`)

// extractPrice returns the text of the first element whose class, id, or
// itemprop attribute mentions "price".
func extractPrice(doc *goquery.Document) string {
	var price string
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		itemprop, _ := s.Attr("itemprop")
		if !priceAttr.MatchString(class) && !priceAttr.MatchString(id) && !strings.EqualFold(itemprop, "price") {
			return true
		}

		t := collapseWhitespace(s.Text())
		if t == "" {
			if content, ok := s.Attr("content"); ok {
				t = collapseWhitespace(content)
			}
		}
		if priceText(t) {
			price = t
			return false
		}
		return true
	})
	return price
}

// priceText filters out price-class containers whose text is clearly not a
// price (navigation blocks, whole sections).
func priceText(s string) bool {
	return len(s) <= 64 && strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

// extractBodyExcerpt collapses the page body text into a single excerpt
// capped at maxBodyExcerpt characters.
func extractBodyExcerpt(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, nav, footer, header").Remove()
	text := collapseWhitespace(body.Text())
	if len(text) > maxBodyExcerpt {
		cut := maxBodyExcerpt
		// Back off to a rune boundary so the cut never leaves a partial
		// multi-byte character behind.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

var whitespace = regexp.MustCompile(`\s+`)

// collapseWhitespace trims and squashes all runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
