package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAdminArticleCRUD(t *testing.T) {
	env := newTestEnv(t)
	cleanArticles(t, env.DB, "admin-crud-article", "admin-crud-article-renamed")

	// Create.
	body := `{"title":"Admin CRUD Article","slug":"admin-crud-article","category":"kitchen","story":["One paragraph."]}`
	req := httptest.NewRequest(http.MethodPost, "/admin/articles", strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.Admin.CreateArticle(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rr.Code, rr.Body.String())
	}
	id := mustParseArticleID(t, []byte(`{"article":`+rr.Body.String()+`}`))

	// Read.
	req = httptest.NewRequest(http.MethodGet, "/admin/articles/"+id.String(), nil)
	req = withChiURLParam(req, "id", id.String())
	rr = httptest.NewRecorder()
	env.Admin.GetArticle(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d", rr.Code)
	}

	// Update: rename and publish.
	update := `{"title":"Admin CRUD Article Renamed","slug":"admin-crud-article-renamed","category":"kitchen","story":["One paragraph."],"status":"published"}`
	req = httptest.NewRequest(http.MethodPut, "/admin/articles/"+id.String(), strings.NewReader(update))
	req = withChiURLParam(req, "id", id.String())
	rr = httptest.NewRecorder()
	env.Admin.UpdateArticle(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: got %d: %s", rr.Code, rr.Body.String())
	}

	var updated struct {
		Title       string  `json:"title"`
		Status      string  `json:"status"`
		PublishedAt *string `json:"published_at"`
	}
	json.Unmarshal(rr.Body.Bytes(), &updated)
	if updated.Title != "Admin CRUD Article Renamed" {
		t.Errorf("title: got %q", updated.Title)
	}
	if updated.Status != "published" {
		t.Errorf("status: got %q", updated.Status)
	}
	if updated.PublishedAt == nil {
		t.Error("publishing should set published_at")
	}

	// Delete.
	req = httptest.NewRequest(http.MethodDelete, "/admin/articles/"+id.String(), nil)
	req = withChiURLParam(req, "id", id.String())
	rr = httptest.NewRecorder()
	env.Admin.DeleteArticle(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/articles/"+id.String(), nil)
	req = withChiURLParam(req, "id", id.String())
	rr = httptest.NewRecorder()
	env.Admin.GetArticle(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rr.Code)
	}
}

func TestAdminArticleValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing title", `{"slug":"x"}`, http.StatusUnprocessableEntity},
		{"not json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/articles", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			env.Admin.CreateArticle(rr, req)
			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestAdminArticleMutationClearsCache(t *testing.T) {
	env := newTestEnv(t)
	testArticle(t, env, "admin-cache-clear", "kitchen")

	// Warm the article cache through the public handler.
	req := httptest.NewRequest(http.MethodGet, "/api/articles/admin-cache-clear", nil)
	req = withChiURLParam(req, "slug", "admin-cache-clear")
	env.Public.Article(httptest.NewRecorder(), req)

	// Any article create invalidates all cached pages.
	cleanArticles(t, env.DB, "admin-cache-clear-2")
	body := `{"title":"Cache Clear Trigger","slug":"admin-cache-clear-2","story":[]}`
	creq := httptest.NewRequest(http.MethodPost, "/admin/articles", strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.Admin.CreateArticle(rr, creq)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d", rr.Code)
	}

	if _, ok := env.PageCache.Get(creq.Context(), "article:admin-cache-clear"); ok {
		t.Error("expected article cache entry to be invalidated")
	}
}

func TestAdminProductCRUD(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM products WHERE name = 'Handler Test Mop'") })

	body := `{"name":"Handler Test Mop","url":"https://shop.example/mop","description":"Cleans fast.","physical_description":"a yellow mop with a telescopic handle","image_urls":["https://shop.example/1.jpg"]}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.Admin.CreateProduct(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rr.Code, rr.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rr.Body.Bytes(), &created)

	update := `{"name":"Handler Test Mop","url":"https://shop.example/mop-v2","description":"Cleans faster.","physical_description":"a yellow mop"}`
	req = httptest.NewRequest(http.MethodPut, "/admin/products/"+created.ID, strings.NewReader(update))
	req = withChiURLParam(req, "id", created.ID)
	rr = httptest.NewRecorder()
	env.Admin.UpdateProduct(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: got %d: %s", rr.Code, rr.Body.String())
	}

	var updated struct {
		URL string `json:"url"`
	}
	json.Unmarshal(rr.Body.Bytes(), &updated)
	if updated.URL != "https://shop.example/mop-v2" {
		t.Errorf("url: got %q", updated.URL)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/products/"+created.ID, nil)
	req = withChiURLParam(req, "id", created.ID)
	rr = httptest.NewRecorder()
	env.Admin.DeleteProduct(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rr.Code)
	}
}

func TestAdminProductValidation(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"","url":"https://shop.example/x"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.Admin.CreateProduct(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("got %d, want 422", rr.Code)
	}
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rr := httptest.NewRecorder()
	env.Admin.Dashboard(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}

	var counts map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"draft_articles", "published_articles", "products"} {
		if _, ok := counts[key]; !ok {
			t.Errorf("missing count %q", key)
		}
	}
}

func TestAdminCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"nope","password":"longenough","role":"editor"}`},
		{"short password", `{"email":"a@b.c","password":"short","role":"editor"}`},
		{"bad role", `{"email":"a@b.c","password":"longenough","role":"superuser"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			env.Admin.CreateUser(rr, req)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Errorf("got %d, want 422", rr.Code)
			}
		})
	}
}
