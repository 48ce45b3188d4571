// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"adverpress/internal/ai"
	"adverpress/internal/cache"
	"adverpress/internal/models"
	"adverpress/internal/pipeline"
	"adverpress/internal/store"
)

// maxCreativeBytes caps uploaded ad creatives.
const maxCreativeBytes = 10 << 20 // 10 MiB

// maxReferenceImages is how many stored product photos are attached to a
// generation call.
const maxReferenceImages = 3

// GenerationPipeline is the part of the pipeline the handlers drive.
type GenerationPipeline interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	RegenerateImage(ctx context.Context, prompt string, slot int, req pipeline.Request) (*pipeline.GeneratedImage, error)
}

// ImageFetcher downloads remote images for use as vision attachments.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

// Generate groups the handlers that run the content pipeline. moderator
// may be nil, in which case user-supplied text goes to the providers
// unchecked (they apply their own filters).
type Generate struct {
	pipeline     GenerationPipeline
	images       ImageFetcher
	moderator    ai.Moderator
	articleStore *store.ArticleStore
	productStore *store.ProductStore
	pageCache    *cache.PageCache
}

// NewGenerate creates a new Generate handler group.
func NewGenerate(p GenerationPipeline, images ImageFetcher, moderator ai.Moderator, articles *store.ArticleStore, products *store.ProductStore, pageCache *cache.PageCache) *Generate {
	return &Generate{
		pipeline:     p,
		images:       images,
		moderator:    moderator,
		articleStore: articles,
		productStore: products,
		pageCache:    pageCache,
	}
}

// productLinkRequest is the body of POST /admin/generate/product-link.
// Either product_id (a stored profile) or product_url must be set; the
// profile supplies URL, descriptions, and reference photos, each of which
// an explicit field overrides.
type productLinkRequest struct {
	ProductID           string `json:"product_id,omitempty"`
	ProductURL          string `json:"product_url,omitempty"`
	Angle               string `json:"angle,omitempty"`
	Category            string `json:"category,omitempty"`
	ProductDescription  string `json:"product_description,omitempty"`
	PhysicalDescription string `json:"physical_description,omitempty"`
	VisualBrief         string `json:"visual_brief,omitempty"`
	CTAURL              string `json:"cta_url,omitempty"`
	ExpiresInHours      int    `json:"expires_in_hours,omitempty"`
}

// ProductLink generates an advertorial from a product page URL and saves
// it as a draft article.
func (h *Generate) ProductLink(w http.ResponseWriter, r *http.Request) {
	var body productLinkRequest
	if err := decodeJSON(w, r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := validateGeneration(body.ProductDescription, body.PhysicalDescription, body.VisualBrief, ""); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req := pipeline.Request{
		Mode:                pipeline.ModeProductLink,
		ProductURL:          body.ProductURL,
		Angle:               body.Angle,
		ProductDescription:  body.ProductDescription,
		PhysicalDescription: body.PhysicalDescription,
		VisualBrief:         body.VisualBrief,
	}

	ctaURL := body.CTAURL
	if body.ProductID != "" {
		product, ok := h.loadProduct(w, body.ProductID)
		if !ok {
			return
		}
		h.applyProduct(r.Context(), &req, product)
		if ctaURL == "" {
			ctaURL = product.URL
		}
	}
	if ctaURL == "" {
		ctaURL = req.ProductURL
	}

	if !h.moderate(w, r, req.VisualBrief, req.ProductDescription) {
		return
	}

	result, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		h.pipelineError(w, err)
		return
	}

	h.saveResult(w, r, result, body.Category, ctaURL, body.ExpiresInHours)
}

// AdCreative generates an advertorial from an uploaded ad image. The
// request is multipart: a "creative" file plus text fields.
func (h *Generate) AdCreative(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreativeBytes)
	if err := r.ParseMultipartForm(maxCreativeBytes); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("creative")
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, "creative image is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "could not read creative image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		errorJSON(w, http.StatusUnprocessableEntity, "creative must be an image")
		return
	}

	form := r.MultipartForm.Value
	formValue := func(key string) string {
		if vals := form[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	req := pipeline.Request{
		Mode:                pipeline.ModeAdCreative,
		Angle:               formValue("angle"),
		Persona:             formValue("persona"),
		ProductDescription:  formValue("product_description"),
		PhysicalDescription: formValue("physical_description"),
		VisualBrief:         formValue("visual_brief"),
		CreativeImage:       &ai.ImageInput{MimeType: mimeType, Data: data},
	}

	if msg := validateGeneration(req.ProductDescription, req.PhysicalDescription, req.VisualBrief, req.Persona); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if !h.moderate(w, r, req.VisualBrief, req.ProductDescription) {
		return
	}

	result, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		h.pipelineError(w, err)
		return
	}

	expires, _ := strconv.Atoi(formValue("expires_in_hours"))
	h.saveResult(w, r, result, formValue("category"), formValue("cta_url"), expires)
}

// regenerateRequest is the body of POST /admin/articles/{id}/images/{slot}.
type regenerateRequest struct {
	Prompt              string `json:"prompt"`
	ProductID           string `json:"product_id,omitempty"`
	PhysicalDescription string `json:"physical_description,omitempty"`
	VisualBrief         string `json:"visual_brief,omitempty"`
	Angle               string `json:"angle,omitempty"`
}

// RegenerateImage re-runs synthesis for a single image slot of a saved
// article, typically after both providers failed or the admin edited the
// prompt.
func (h *Generate) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid article id")
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid image slot")
		return
	}

	article, err := h.articleStore.FindByID(id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	if article == nil {
		errorJSON(w, http.StatusNotFound, "article not found")
		return
	}

	var body regenerateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	prompt := body.Prompt
	if prompt == "" && slot >= 0 && slot < len(article.ImagePrompts) {
		prompt = article.ImagePrompts[slot]
	}

	if msg := validateGeneration("", body.PhysicalDescription, body.VisualBrief, ""); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if utf8.RuneCountInString(prompt) > maxPromptLen {
		errorJSON(w, http.StatusUnprocessableEntity, "Prompt is too long (max 2,000 characters).")
		return
	}

	req := pipeline.Request{
		Mode:                pipeline.ModeProductLink,
		Angle:               body.Angle,
		PhysicalDescription: body.PhysicalDescription,
		VisualBrief:         body.VisualBrief,
	}
	if body.ProductID != "" {
		product, ok := h.loadProduct(w, body.ProductID)
		if !ok {
			return
		}
		h.applyProduct(r.Context(), &req, product)
	}

	if !h.moderate(w, r, body.VisualBrief, "") {
		return
	}

	img, err := h.pipeline.RegenerateImage(r.Context(), prompt, slot, req)
	if err != nil {
		h.pipelineError(w, err)
		return
	}
	if img == nil {
		errorJSON(w, http.StatusBadGateway, "image synthesis failed on all providers")
		return
	}

	if err := h.articleStore.SetImage(article.ID, slot, img.URL, img.Engine); err != nil {
		slog.Error("save regenerated image failed", "error", err, "id", article.ID)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.pageCache.Invalidate(r.Context(), cache.ArticleKey(article.Slug))
	respondJSON(w, http.StatusOK, img)
}

// loadProduct resolves a product_id string, writing the error response on
// failure.
func (h *Generate) loadProduct(w http.ResponseWriter, rawID string) (*models.Product, bool) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid product id")
		return nil, false
	}
	product, err := h.productStore.FindByID(id)
	if err != nil {
		slog.Error("find product failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if product == nil {
		errorJSON(w, http.StatusNotFound, "product not found")
		return nil, false
	}
	return product, true
}

// applyProduct fills request fields from a stored product profile without
// overriding anything the caller set explicitly, and downloads up to
// three reference photos. Unfetchable photos are skipped.
func (h *Generate) applyProduct(ctx context.Context, req *pipeline.Request, product *models.Product) {
	if req.ProductURL == "" {
		req.ProductURL = product.URL
	}
	if req.ProductDescription == "" {
		req.ProductDescription = product.Description
	}
	if req.PhysicalDescription == "" {
		req.PhysicalDescription = product.PhysicalDescription
	}

	if h.images == nil {
		return
	}
	if product.MainImageURL != "" {
		if img := h.fetchImage(ctx, product.MainImageURL); img != nil {
			req.ProductMainImage = img
		}
	}
	for _, u := range product.ImageURLs {
		if len(req.ProductImages) >= maxReferenceImages {
			break
		}
		if u == product.MainImageURL {
			continue
		}
		if img := h.fetchImage(ctx, u); img != nil {
			req.ProductImages = append(req.ProductImages, *img)
		}
	}
}

func (h *Generate) fetchImage(ctx context.Context, imageURL string) *ai.ImageInput {
	data, mimeType, err := h.images.FetchImage(ctx, imageURL)
	if err != nil {
		slog.Warn("reference image fetch failed", "url", imageURL, "error", err)
		return nil
	}
	return &ai.ImageInput{MimeType: mimeType, Data: data}
}

// moderate runs user-supplied text through the moderation endpoint when
// one is configured. Returns false after writing the response if a text
// is flagged.
func (h *Generate) moderate(w http.ResponseWriter, r *http.Request, texts ...string) bool {
	if h.moderator == nil {
		return true
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		result, err := h.moderator.CheckSafety(r.Context(), text)
		if err != nil {
			// Moderation is advisory; the providers enforce their own
			// filters. Log and continue.
			slog.Warn("moderation check failed", "error", err)
			continue
		}
		if !result.Safe {
			slog.Warn("moderation flagged input", "categories", result.Categories)
			errorJSON(w, http.StatusUnprocessableEntity, "input flagged by moderation: "+strings.Join(result.Categories, ", "))
			return false
		}
	}
	return true
}

// pipelineError maps pipeline sentinel errors to HTTP statuses.
func (h *Generate) pipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrValidation):
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, pipeline.ErrGenerationMalformed):
		errorJSON(w, http.StatusBadGateway, "the model returned an unusable draft, try again")
	case errors.Is(err, pipeline.ErrProviderTimeout):
		errorJSON(w, http.StatusGatewayTimeout, "the model did not answer in time, try again")
	default:
		slog.Error("pipeline run failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

// saveResult persists a pipeline result as a draft article and responds
// with it.
// uniqueSlug keeps the model-produced slug unless an earlier generation for
// the same product already took it, in which case a short random suffix is
// appended. Without this the second insert would trip the slug unique
// constraint after copy and images were already paid for.
func (h *Generate) uniqueSlug(base string) string {
	exists, err := h.articleStore.SlugExists(base)
	if err != nil {
		slog.Warn("slug existence check failed", "slug", base, "error", err)
		return base
	}
	if !exists {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}

func (h *Generate) saveResult(w http.ResponseWriter, r *http.Request, result *pipeline.Result, category, ctaURL string, expiresInHours int) {
	draft := result.Draft

	article := &models.Article{
		Title:            draft.Title,
		Slug:             h.uniqueSlug(draft.Slug),
		Category:         category,
		Author:           draft.Author,
		AdvertorialLabel: draft.AdvertorialLabel,
		Excerpt:          draft.Excerpt,
		Hook:             draft.Hook,
		Story:            draft.Story,
		Benefits:         draft.Benefits,
		UrgencyBox:       draft.UrgencyBox,
		Comments:         draft.Comments,
		CTAText:          draft.CTAText,
		CTAURL:           ctaURL,
		ImagePrompts:     draft.ImagePrompts,
		Status:           models.ArticleStatusDraft,
	}
	if article.Category == "" {
		article.Category = draft.Category
	}

	if len(result.Images) == 2 {
		if img := result.Images[0]; img != nil {
			article.ImageProblemURL = &img.URL
			article.ImageEngine = img.Engine
		}
		if img := result.Images[1]; img != nil {
			article.ImageSolutionURL = &img.URL
			if article.ImageEngine == "" {
				article.ImageEngine = img.Engine
			}
		}
	}

	if expiresInHours > 0 {
		expires := time.Now().Add(time.Duration(expiresInHours) * time.Hour)
		article.ExpiresAt = &expires
	}

	created, err := h.articleStore.Create(article)
	if err != nil {
		slog.Error("save generated article failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"article":          created,
		"defaulted_fields": result.DefaultedFields,
		"image_urls":       result.ImageURLs(),
	})
}
