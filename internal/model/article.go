package model

import (
	"time"

	"github.com/published/backend/pkg/publish"
)

// Article は公開制御の対象となる記事
type Article struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	AuthorID string `json:"author_id,omitempty"`
	publish.Fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleSummary は管理画面一覧の1行。StatusSummary は publish.Describe の結果。
type ArticleSummary struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	PublishStatus string     `json:"publish_status"`
	LiveAsOf      *time.Time `json:"live_as_of,omitempty"`
	StatusSummary string     `json:"status_summary"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewArticleSummary builds the admin listing row for a.
func NewArticleSummary(a *Article) ArticleSummary {
	return ArticleSummary{
		ID:            a.ID,
		Slug:          a.Slug,
		Title:         a.Title,
		PublishStatus: a.Status.String(),
		LiveAsOf:      a.LiveAsOf,
		StatusSummary: a.Summary(),
		UpdatedAt:     a.UpdatedAt,
	}
}

// ArticleListOptions carries pagination and gating parameters for listing articles.
type ArticleListOptions struct {
	Limit  int
	Offset int
	// IncludeHidden disables the visibility condition (privileged viewers and admin listing).
	IncludeHidden bool
	// Now is bound to the visibility condition when IncludeHidden is false.
	Now time.Time
}
