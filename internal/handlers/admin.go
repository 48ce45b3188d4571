// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"adverpress/internal/cache"
	"adverpress/internal/models"
	"adverpress/internal/slug"
	"adverpress/internal/storage"
	"adverpress/internal/store"
)

// Admin groups the article, product, category, and user management
// handlers of the admin API. storageClient may be nil when S3 is not
// configured; image cleanup is then skipped.
type Admin struct {
	articleStore  *store.ArticleStore
	productStore  *store.ProductStore
	categoryStore *store.CategoryStore
	userStore     *store.UserStore
	storageClient *storage.Client
	pageCache     *cache.PageCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(articles *store.ArticleStore, products *store.ProductStore, categories *store.CategoryStore, users *store.UserStore, storageClient *storage.Client, pageCache *cache.PageCache) *Admin {
	return &Admin{
		articleStore:  articles,
		productStore:  products,
		categoryStore: categories,
		userStore:     users,
		storageClient: storageClient,
		pageCache:     pageCache,
	}
}

// Dashboard returns content counts for the admin landing page.
func (h *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.articleStore.CountByStatus(models.ArticleStatusDraft)
	if err != nil {
		slog.Error("count drafts failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	published, err := h.articleStore.CountByStatus(models.ArticleStatusPublished)
	if err != nil {
		slog.Error("count published failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	products, err := h.productStore.List()
	if err != nil {
		slog.Error("list products failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"draft_articles":     drafts,
		"published_articles": published,
		"products":           len(products),
	})
}

// ---------- articles ----------

// ListArticles returns all articles, drafts included.
func (h *Admin) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleStore.List()
	if err != nil {
		slog.Error("list articles failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

// GetArticle returns one article by ID.
func (h *Admin) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := h.articleByID(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, article)
}

// CreateArticle stores a manually authored article.
func (h *Admin) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var article models.Article
	if err := decodeJSON(w, r, &article); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := validateArticle(article.Title, article.Slug, article.Story); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if article.Slug == "" {
		article.Slug = slug.Generate(article.Title)
	}
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}

	created, err := h.articleStore.Create(&article)
	if err != nil {
		slog.Error("create article failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.pageCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, created)
}

// UpdateArticle replaces an article's editable fields.
func (h *Admin) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.articleByID(w, r)
	if !ok {
		return
	}

	var article models.Article
	if err := decodeJSON(w, r, &article); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := validateArticle(article.Title, article.Slug, article.Story); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}

	article.ID = existing.ID
	if article.Slug == "" {
		article.Slug = existing.Slug
	}
	if article.Status == "" {
		article.Status = existing.Status
	}
	article.PublishedAt = existing.PublishedAt

	if err := h.articleStore.Update(&article); err != nil {
		slog.Error("update article failed", "error", err, "id", article.ID)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.pageCache.InvalidateAll(r.Context())

	updated, err := h.articleStore.FindByID(article.ID)
	if err != nil || updated == nil {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteArticle removes an article and its generated images from S3.
func (h *Admin) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article, ok := h.articleByID(w, r)
	if !ok {
		return
	}

	if err := h.articleStore.Delete(article.ID); err != nil {
		slog.Error("delete article failed", "error", err, "id", article.ID)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Generated images are owned by the article; remove them from S3.
	// Best effort: orphaned objects are cheaper than a failed delete.
	if h.storageClient != nil {
		for _, u := range article.ImageURLs() {
			key, ok := h.storageClient.ExtractKey(u)
			if !ok {
				continue
			}
			if err := h.storageClient.Delete(r.Context(), key); err != nil {
				slog.Warn("delete article image failed", "key", key, "error", err)
			}
		}
	}

	h.pageCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// articleByID resolves the {id} URL parameter to an article, writing the
// error response itself when the ID is invalid or unknown.
func (h *Admin) articleByID(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid article id")
		return nil, false
	}
	article, err := h.articleStore.FindByID(id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if article == nil {
		errorJSON(w, http.StatusNotFound, "article not found")
		return nil, false
	}
	return article, true
}

// ---------- products ----------

// ListProducts returns all stored product profiles.
func (h *Admin) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productStore.List()
	if err != nil {
		slog.Error("list products failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

// GetProduct returns one product by ID.
func (h *Admin) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productByID(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// CreateProduct stores a new product profile.
func (h *Admin) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := validateProduct(product.Name, product.URL, product.Description, product.PhysicalDescription); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := h.productStore.Create(&product)
	if err != nil {
		slog.Error("create product failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateProduct replaces a product's fields.
func (h *Admin) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.productByID(w, r)
	if !ok {
		return
	}

	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := validateProduct(product.Name, product.URL, product.Description, product.PhysicalDescription); msg != "" {
		errorJSON(w, http.StatusUnprocessableEntity, msg)
		return
	}

	product.ID = existing.ID
	if err := h.productStore.Update(&product); err != nil {
		slog.Error("update product failed", "error", err, "id", product.ID)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	updated, err := h.productStore.FindByID(product.ID)
	if err != nil || updated == nil {
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes a product profile. Articles generated from it are
// untouched.
func (h *Admin) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.productByID(w, r)
	if !ok {
		return
	}
	if err := h.productStore.Delete(product.ID); err != nil {
		slog.Error("delete product failed", "error", err, "id", product.ID)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Admin) productByID(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
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

// ---------- categories ----------

// CreateCategory adds a browsable category.
func (h *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := decodeJSON(w, r, &category); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		errorJSON(w, http.StatusUnprocessableEntity, "Category name is required.")
		return
	}
	if category.Slug == "" {
		category.Slug = slug.Generate(category.Name)
	}

	created, err := h.categoryStore.Create(&category)
	if err != nil {
		slog.Error("create category failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.pageCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, created)
}

// UpdateCategory renames or reorders a category.
func (h *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var category models.Category
	if err := decodeJSON(w, r, &category); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	category.ID = id

	if err := h.categoryStore.Update(&category); err != nil {
		slog.Error("update category failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.pageCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category. Articles keep their category slug,
// which simply stops resolving to a browsable listing.
func (h *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := h.categoryStore.Delete(id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.pageCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------- users (admin role only) ----------

// ListUsers returns all accounts.
func (h *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// CreateUser adds an account. The new user enrolls a TOTP device on first
// login.
func (h *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if !strings.Contains(body.Email, "@") {
		errorJSON(w, http.StatusUnprocessableEntity, "A valid email is required.")
		return
	}
	if len(body.Password) < 8 {
		errorJSON(w, http.StatusUnprocessableEntity, "Password must be at least 8 characters.")
		return
	}
	role := models.Role(body.Role)
	if role != models.RoleAdmin && role != models.RoleEditor && role != models.RoleAuthor {
		errorJSON(w, http.StatusUnprocessableEntity, "Role must be admin, editor, or author.")
		return
	}

	user, err := h.userStore.Create(body.Email, body.Password, body.DisplayName, role)
	if err != nil {
		slog.Error("create user failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// ResetUserTOTP clears a user's TOTP enrollment so they can re-enroll a
// new device on next login.
func (h *Admin) ResetUserTOTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.userStore.ResetTOTP(id); err != nil {
		slog.Error("reset totp failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteUser removes an account.
func (h *Admin) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.userStore.Delete(id); err != nil {
		slog.Error("delete user failed", "error", err, "id", id)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
