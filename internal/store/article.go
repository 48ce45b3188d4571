// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"adverpress/internal/models"
	"adverpress/internal/pipeline"
)

// ArticleStore handles all advertorial article database operations. Story,
// benefits, urgency box, comments and image prompts live in JSONB columns.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, slug, category, author, advertorial_label,
	excerpt, hook, story, benefits, urgency_box, comments, cta_text, cta_url,
	image_prompts, image_problem_url, image_solution_url, image_engine,
	status, expires_at, published_at, created_at, updated_at`

// scanArticle scans one row into an Article, decoding the JSONB columns.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	var story, benefits, urgency, comments, prompts []byte
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Category, &a.Author, &a.AdvertorialLabel,
		&a.Excerpt, &a.Hook, &story, &benefits, &urgency, &comments,
		&a.CTAText, &a.CTAURL, &prompts,
		&a.ImageProblemURL, &a.ImageSolutionURL, &a.ImageEngine,
		&a.Status, &a.ExpiresAt, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(story, &a.Story); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	if err := json.Unmarshal(benefits, &a.Benefits); err != nil {
		return nil, fmt.Errorf("decode benefits: %w", err)
	}
	if err := json.Unmarshal(urgency, &a.UrgencyBox); err != nil {
		return nil, fmt.Errorf("decode urgency box: %w", err)
	}
	if err := json.Unmarshal(comments, &a.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	if err := json.Unmarshal(prompts, &a.ImagePrompts); err != nil {
		return nil, fmt.Errorf("decode image prompts: %w", err)
	}
	return a, nil
}

// jsonbArgs marshals the article's JSONB fields in column order.
func jsonbArgs(a *models.Article) ([]byte, []byte, []byte, []byte, []byte, error) {
	if a.Story == nil {
		a.Story = []string{}
	}
	if a.Benefits == nil {
		a.Benefits = []pipeline.Benefit{}
	}
	if a.Comments == nil {
		a.Comments = []pipeline.Comment{}
	}
	if a.ImagePrompts == nil {
		a.ImagePrompts = []string{}
	}

	story, err := json.Marshal(a.Story)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode story: %w", err)
	}
	benefits, err := json.Marshal(a.Benefits)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode benefits: %w", err)
	}
	urgency, err := json.Marshal(a.UrgencyBox)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode urgency box: %w", err)
	}
	comments, err := json.Marshal(a.Comments)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode comments: %w", err)
	}
	prompts, err := json.Marshal(a.ImagePrompts)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode image prompts: %w", err)
	}
	return story, benefits, urgency, comments, prompts, nil
}

// List returns all articles ordered by creation date descending.
func (s *ArticleStore) List() ([]models.Article, error) {
	rows, err := s.db.Query(`SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// ListPublished returns published articles, optionally filtered by category
// slug, newest first.
func (s *ArticleStore) ListPublished(category string) ([]models.Article, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if category == "" {
		rows, err = s.db.Query(`
			SELECT ` + articleColumns + ` FROM articles
			WHERE status = 'published'
			ORDER BY published_at DESC NULLS LAST`)
	} else {
		rows, err = s.db.Query(`
			SELECT `+articleColumns+` FROM articles
			WHERE status = 'published' AND category = $1
			ORDER BY published_at DESC NULLS LAST`, category)
	}
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

func collectArticles(rows *sql.Rows) ([]models.Article, error) {
	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves a published article by slug. Returns nil if not found.
func (s *ArticleStore) FindBySlug(slug string) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = $1 AND status = 'published'`, slug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// SlugExists reports whether any article, draft or published, owns the slug.
func (s *ArticleStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new article and returns it with generated fields.
func (s *ArticleStore) Create(a *models.Article) (*models.Article, error) {
	if a.Status == models.ArticleStatusPublished && a.PublishedAt == nil {
		now := time.Now()
		a.PublishedAt = &now
	}

	story, benefits, urgency, comments, prompts, err := jsonbArgs(a)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO articles (title, slug, category, author, advertorial_label,
			excerpt, hook, story, benefits, urgency_box, comments, cta_text, cta_url,
			image_prompts, image_problem_url, image_solution_url, image_engine,
			status, expires_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING `+articleColumns,
		a.Title, a.Slug, a.Category, a.Author, a.AdvertorialLabel,
		a.Excerpt, a.Hook, story, benefits, urgency, comments, a.CTAText, a.CTAURL,
		prompts, a.ImageProblemURL, a.ImageSolutionURL, a.ImageEngine,
		a.Status, a.ExpiresAt, a.PublishedAt,
	)
	result, err := scanArticle(row)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return result, nil
}

// Update modifies an existing article.
func (s *ArticleStore) Update(a *models.Article) error {
	if a.Status == models.ArticleStatusPublished && a.PublishedAt == nil {
		now := time.Now()
		a.PublishedAt = &now
	}

	story, benefits, urgency, comments, prompts, err := jsonbArgs(a)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE articles SET
			title = $1, slug = $2, category = $3, author = $4, advertorial_label = $5,
			excerpt = $6, hook = $7, story = $8, benefits = $9, urgency_box = $10,
			comments = $11, cta_text = $12, cta_url = $13, image_prompts = $14,
			image_problem_url = $15, image_solution_url = $16, image_engine = $17,
			status = $18, expires_at = $19, published_at = $20, updated_at = NOW()
		WHERE id = $21`,
		a.Title, a.Slug, a.Category, a.Author, a.AdvertorialLabel,
		a.Excerpt, a.Hook, story, benefits, urgency, comments, a.CTAText, a.CTAURL,
		prompts, a.ImageProblemURL, a.ImageSolutionURL, a.ImageEngine,
		a.Status, a.ExpiresAt, a.PublishedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// SetImage updates a single image slot after regeneration.
func (s *ArticleStore) SetImage(id uuid.UUID, slot int, url, engine string) error {
	column := "image_problem_url"
	if slot == 1 {
		column = "image_solution_url"
	}
	_, err := s.db.Exec(`
		UPDATE articles SET `+column+` = $1, image_engine = $2, updated_at = NOW()
		WHERE id = $3`, url, engine, id)
	if err != nil {
		return fmt.Errorf("set article image: %w", err)
	}
	return nil
}

// Delete removes an article by ID.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// CountByStatus returns the number of articles in the given status.
func (s *ArticleStore) CountByStatus(status models.ArticleStatus) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}
