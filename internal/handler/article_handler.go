package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/published/backend/internal/model"
	"github.com/published/backend/internal/service"
	"github.com/published/backend/pkg/auth"
	"github.com/published/backend/pkg/publish"
)

// ArticleHandler は公開記事の HTTP ハンドラ（認証不要）。
// ホストとしてログインしている場合は非公開記事もプレビューできる。
type ArticleHandler struct {
	svc   service.ArticleService
	pages Pagination
}

// NewArticleHandler は ArticleHandler を生成する
func NewArticleHandler(svc service.ArticleService, pages Pagination) *ArticleHandler {
	return &ArticleHandler{svc: svc, pages: pages}
}

// List は GET /api/articles を処理する
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pages.parse(r)
	privileged := auth.IsHostFromContext(r.Context())

	articles, err := h.svc.List(r.Context(), privileged, limit, offset)
	if err != nil {
		slog.Error("list articles failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	// nil スライスを空配列として返す
	if articles == nil {
		articles = []*model.Article{}
	}
	writeJSON(w, http.StatusOK, map[string][]*model.Article{"articles": articles})
}

// Get は GET /api/articles/{slug} を処理する。
// 存在しない記事と非公開記事は同じ 404 を返す。
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	privileged := auth.IsHostFromContext(r.Context())

	article, err := h.svc.GetBySlug(r.Context(), slug, privileged)
	if err != nil {
		if errors.Is(err, publish.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		slog.Error("get article failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, article)
}
