package models

import "testing"

func TestArticleIsPublished(t *testing.T) {
	a := &Article{Status: ArticleStatusDraft}
	if a.IsPublished() {
		t.Error("draft reported as published")
	}
	a.Status = ArticleStatusPublished
	if !a.IsPublished() {
		t.Error("published article not reported as published")
	}
}

func TestArticleImageURLs(t *testing.T) {
	problem := "https://cdn.example/p.webp"
	solution := "https://cdn.example/s.webp"
	empty := ""

	tests := []struct {
		name     string
		article  Article
		wantURLs int
	}{
		{"both set", Article{ImageProblemURL: &problem, ImageSolutionURL: &solution}, 2},
		{"problem failed", Article{ImageSolutionURL: &solution}, 1},
		{"empty string slot", Article{ImageProblemURL: &empty, ImageSolutionURL: &solution}, 1},
		{"both failed", Article{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.article.ImageURLs(); len(got) != tt.wantURLs {
				t.Errorf("ImageURLs() = %v, want %d entries", got, tt.wantURLs)
			}
		})
	}
}
