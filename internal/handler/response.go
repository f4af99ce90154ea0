package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// writeJSON は Content-Type を付けて JSON を書き出す
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError は {"error": code} を書き出す
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// Pagination はページングの既定値と上限
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// parse は ?limit / ?offset を読み取る。不正値は既定値に戻す。
func (p Pagination) parse(r *http.Request) (limit, offset int) {
	limit = p.DefaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= p.MaxLimit {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
