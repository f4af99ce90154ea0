package handler

import (
	"net/http"
	"time"

	"github.com/published/backend/pkg/auth"
)

// MeHandler は現在のセッションのユーザー情報を返すハンドラ
type MeHandler struct{}

// NewMeHandler は MeHandler を生成する
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// meResponse は GET /api/me のレスポンス。
// Role が "host" の場合、公開 API でも非公開記事がプレビュー表示される。
type meResponse struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

// Me は GET /api/me を処理する（RequireAuth + HostMiddleware の後段）
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	resp := meResponse{ID: userID}
	if auth.IsHostFromContext(r.Context()) {
		resp.Role = "host"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout はセッションクッキーを削除する（POST /api/auth/logout）
func (h *MeHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
