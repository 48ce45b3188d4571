// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"adverpress/internal/cache"
	"adverpress/internal/database"
	"adverpress/internal/middleware"
	"adverpress/internal/models"
	"adverpress/internal/pipeline"
	"adverpress/internal/session"
	"adverpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "adverpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "adverpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests. The
// generation pipeline is faked; everything else is real.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	ArticleStore  *store.ArticleStore
	ProductStore  *store.ProductStore
	CategoryStore *store.CategoryStore
	UserStore     *store.UserStore
	PageCache     *cache.PageCache
	Pipeline      *fakeGenPipeline
	Admin         *Admin
	Auth          *Auth
	Generate      *Generate
	Public        *Public
}

// fakeGenPipeline implements GenerationPipeline with canned results.
type fakeGenPipeline struct {
	result   *pipeline.Result
	image    *pipeline.GeneratedImage
	err      error
	requests []pipeline.Request
	prompts  []string
}

func (f *fakeGenPipeline) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGenPipeline) RegenerateImage(_ context.Context, prompt string, slot int, req pipeline.Request) (*pipeline.GeneratedImage, error) {
	f.prompts = append(f.prompts, prompt)
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

// testResult builds a plausible pipeline result for the fake.
func testResult() *pipeline.Result {
	problemURL := "https://cdn.example/generated/problem.webp"
	solutionURL := "https://cdn.example/generated/solution.webp"
	return &pipeline.Result{
		Draft: &pipeline.Draft{
			Title:            "The Kitchen Trick Nobody Told Me About",
			Slug:             "the-kitchen-trick-nobody-told-me-about",
			Category:         "kitchen",
			Author:           "Maria D.",
			AdvertorialLabel: "ADVERTORIAL",
			Excerpt:          "I almost gave up on my kitchen.",
			Hook:             "I was ready to give up.",
			Story:            []string{"It started last spring.", "Then everything changed."},
			Benefits:         []pipeline.Benefit{{Title: "Fast", Description: "Works in minutes."}},
			UrgencyBox:       pipeline.UrgencyBox{Title: "Limited stock", Text: "Only a few left."},
			Comments:         []pipeline.Comment{{Name: "Ana", Text: "Love it!", Time: "2 hours ago"}},
			CTAText:          "Check availability",
			ImagePrompts:     []string{"A tired woman in a messy kitchen", "A smiling woman using the device"},
		},
		Images: []*pipeline.GeneratedImage{
			{URL: problemURL, Engine: "gemini"},
			{URL: solutionURL, Engine: "gemini"},
		},
	}
}

// newTestEnv creates a complete test environment.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	articleStore := store.NewArticleStore(db)
	productStore := store.NewProductStore(db)
	categoryStore := store.NewCategoryStore(db)
	userStore := store.NewUserStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)

	fake := &fakeGenPipeline{
		result: testResult(),
		image:  &pipeline.GeneratedImage{URL: "https://cdn.example/generated/redo.webp", Engine: "dalle"},
	}

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Sessions:      sessions,
		ArticleStore:  articleStore,
		ProductStore:  productStore,
		CategoryStore: categoryStore,
		UserStore:     userStore,
		PageCache:     pageCache,
		Pipeline:      fake,
		Admin:         NewAdmin(articleStore, productStore, categoryStore, userStore, nil, pageCache),
		Auth:          NewAuth(sessions, userStore),
		Generate:      NewGenerate(fake, nil, nil, articleStore, productStore, pageCache),
		Public:        NewPublic(articleStore, categoryStore, pageCache, "https://reader.example"),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParams adds several chi URL parameters to a request.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// testArticle inserts a published article for reader API tests.
func testArticle(t *testing.T, env *testEnv, slugValue, category string) *models.Article {
	t.Helper()

	problemURL := "https://cdn.example/generated/problem.webp"
	now := time.Now().Add(48 * time.Hour)
	article := &models.Article{
		Title:            "Test Advertorial",
		Slug:             slugValue,
		Category:         category,
		Author:           "Maria D.",
		AdvertorialLabel: "ADVERTORIAL",
		Excerpt:          "A short excerpt.",
		Hook:             "It hooked me.",
		Story:            []string{"First paragraph with **bold** text.", "Second paragraph."},
		Benefits:         []pipeline.Benefit{{Title: "Fast", Description: "Works in minutes."}},
		UrgencyBox:       pipeline.UrgencyBox{Title: "Hurry", Text: "Stock is low."},
		Comments:         []pipeline.Comment{{Name: "Ana", Text: "Great!", Time: "1 hour ago"}},
		CTAText:          "Check availability",
		CTAURL:           "https://shop.example/product",
		ImagePrompts:     []string{"problem prompt", "solution prompt"},
		ImageProblemURL:  &problemURL,
		Status:           models.ArticleStatusPublished,
		ExpiresAt:        &now,
	}

	created, err := env.ArticleStore.Create(article)
	if err != nil {
		t.Fatalf("create test article: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM articles WHERE slug = $1", slugValue)
	})
	return created
}

// cleanArticles removes test articles by slug.
func cleanArticles(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM articles WHERE slug = $1", s)
	}
}
