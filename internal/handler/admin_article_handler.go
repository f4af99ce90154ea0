package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/published/backend/internal/model"
	"github.com/published/backend/internal/repository"
	"github.com/published/backend/internal/service"
	"github.com/published/backend/internal/validator"
	"github.com/published/backend/pkg/auth"
	"github.com/published/backend/pkg/publish"
)

// AdminArticleHandler は管理画面向けの記事 API（認証必須・ホストのみ）
type AdminArticleHandler struct {
	svc       service.ArticleService
	validator *validator.Validator
	pages     Pagination
}

// NewAdminArticleHandler は AdminArticleHandler を生成する
func NewAdminArticleHandler(svc service.ArticleService, v *validator.Validator, pages Pagination) *AdminArticleHandler {
	return &AdminArticleHandler{svc: svc, validator: v, pages: pages}
}

// requireHost はホスト以外を 403 で弾く
func requireHost(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if !auth.IsHostFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// articleID はパスの {id} を UUID として検証する。不正な ID は 404 とする。
func articleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return "", false
	}
	return id.String(), true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation_failed", "fields": errs})
		return
	}
	writeError(w, http.StatusBadRequest, "validation_failed")
}

// writeServiceError はサービス層のエラーを HTTP ステータスに変換する
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "slug_taken")
	default:
		slog.Error("admin article operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, op+"_failed")
	}
}

const maxBodyBytes = 1 << 20

// articleRequest は作成・更新のリクエストボディ。未指定の項目は nil。
type articleRequest struct {
	Slug          *string         `json:"slug"`
	Title         *string         `json:"title"`
	Body          *string         `json:"body"`
	PublishStatus *publish.Status `json:"publish_status"`
	LiveAsOf      *time.Time      `json:"live_as_of"`
}

// decodeArticleRequest はボディを読み、live_as_of キーの有無も返す（null でクリアするため）
func decodeArticleRequest(r *http.Request) (articleRequest, bool, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return articleRequest{}, false, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return articleRequest{}, false, err
	}
	var req articleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return articleRequest{}, false, err
	}
	return req, hasJSONKey(raw, "live_as_of"), nil
}

// hasJSONKey は raw に key が含まれるか判定する
func hasJSONKey(raw map[string]json.RawMessage, key string) bool {
	_, ok := raw[key]
	return ok
}

// apply はリクエストの値を article に反映し、公開設定に触れたかを返す
func (req articleRequest) apply(a *model.Article, liveAsOfSent bool) bool {
	if req.Slug != nil {
		a.Slug = *req.Slug
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Body != nil {
		a.Body = *req.Body
	}
	touched := false
	if req.PublishStatus != nil {
		a.Status = *req.PublishStatus
		touched = true
	}
	if liveAsOfSent {
		a.LiveAsOf = req.LiveAsOf
		touched = true
	}
	return touched
}

// List は GET /api/admin/articles を処理する
func (h *AdminArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	limit, offset := h.pages.parse(r)
	summaries, err := h.svc.AdminList(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "list")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.ArticleSummary{"articles": summaries})
}

// Get は GET /api/admin/articles/{id} を処理する
func (h *AdminArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	article, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"article":        article,
		"status_summary": article.Summary(),
	})
}

// Create は POST /api/admin/articles を処理する。
// 公開設定を指定しない場合は下書き（available_after・日時未設定）で作成する。
func (h *AdminArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	req, liveAsOfSent, err := decodeArticleRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	article := &model.Article{AuthorID: userID, Fields: publish.Draft()}
	touched := req.apply(article, liveAsOfSent)

	if err := h.validator.ValidateArticle(article); err != nil {
		writeValidationError(w, err)
		return
	}
	if touched {
		if err := h.validator.ValidatePublish(article.Fields); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	if err := h.svc.Create(r.Context(), article); err != nil {
		writeServiceError(w, err, "create")
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// Update は PUT /api/admin/articles/{id} を処理する（指定された項目だけ更新）
func (h *AdminArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	req, liveAsOfSent, err := decodeArticleRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	existing, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "update")
		return
	}
	touched := req.apply(existing, liveAsOfSent)

	if err := h.validator.ValidateArticle(existing); err != nil {
		writeValidationError(w, err)
		return
	}
	if touched {
		if err := h.validator.ValidatePublish(existing.Fields); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	if err := h.svc.Update(r.Context(), existing); err != nil {
		writeServiceError(w, err, "update")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// Action は POST /api/admin/articles/{id}/actions/{action} を処理する
func (h *AdminArticleHandler) Action(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	action, err := publish.ParseAction(r.PathValue("action"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_action")
		return
	}

	article, err := h.svc.ApplyAction(r.Context(), id, action)
	if err != nil {
		writeServiceError(w, err, "action")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"article":        article,
		"status_summary": article.Summary(),
	})
}

// Delete は DELETE /api/admin/articles/{id} を処理する
func (h *AdminArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Choices は GET /api/admin/publish-choices を処理する（フォームの選択肢）
func (h *AdminArticleHandler) Choices(w http.ResponseWriter, r *http.Request) {
	if !requireHost(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statuses": publish.Choices(),
		"actions":  publish.Actions(),
	})
}
