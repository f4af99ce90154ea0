package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/published/backend/internal/config"
	"github.com/published/backend/internal/handler"
	"github.com/published/backend/internal/logging"
	"github.com/published/backend/internal/repository"
	"github.com/published/backend/internal/service"
	"github.com/published/backend/internal/validator"
	"github.com/published/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	articleRepo := repository.NewPgArticleRepository(pool)
	articleService := service.NewArticleService(articleRepo)

	pages := handler.Pagination{DefaultLimit: cfg.DefaultPageSize, MaxLimit: cfg.MaxPageSize}
	h := handler.New(articleRepo, cfg.FrontendURL)
	articleHandler := handler.NewArticleHandler(articleService, pages)
	adminHandler := handler.NewAdminArticleHandler(articleService, validator.NewValidator(), pages)
	meHandler := handler.NewMeHandler()

	sessionSecret := auth.SessionSecretBytes(cfg.SessionSecret)
	markHost := auth.HostMiddleware(cfg.HostUserIDs)

	// 公開 API: 匿名アクセス可。ホストのセッションがあれば非公開記事もプレビューできる
	optionalAuth := auth.OptionalAuth(sessionSecret)
	wrapPublic := func(h http.Handler) http.Handler {
		return optionalAuth(markHost(h))
	}

	// 管理 API: 認証必須。AUTH_REQUIRED=false の場合は開発用ユーザーで通す
	requireAuth := auth.RequireAuth(sessionSecret)
	if !cfg.AuthRequired {
		requireAuth = auth.DevAuth
		slog.Warn("AUTH_REQUIRED is false; admin routes use the development user", "user_id", auth.DevUserID)
	}
	wrapAdmin := func(h http.Handler) http.Handler {
		return requireAuth(markHost(h))
	}

	mux := http.NewServeMux()
	route := func(pattern string, wrap func(http.Handler) http.Handler, fn http.HandlerFunc) {
		mux.Handle(pattern, handler.Instrument(pattern, wrap(fn)))
	}
	plain := func(h http.Handler) http.Handler { return h }

	route("GET /api/health", plain, h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Session routes
	route("GET /api/me", wrapAdmin, meHandler.Me)
	route("POST /api/auth/logout", plain, meHandler.Logout)

	// Public article routes
	route("GET /api/articles", wrapPublic, articleHandler.List)
	route("GET /api/articles/{slug}", wrapPublic, articleHandler.Get)

	// Admin article routes (host only)
	route("GET /api/admin/articles", wrapAdmin, adminHandler.List)
	route("POST /api/admin/articles", wrapAdmin, adminHandler.Create)
	route("GET /api/admin/articles/{id}", wrapAdmin, adminHandler.Get)
	route("PUT /api/admin/articles/{id}", wrapAdmin, adminHandler.Update)
	route("DELETE /api/admin/articles/{id}", wrapAdmin, adminHandler.Delete)
	route("POST /api/admin/articles/{id}/actions/{action}", wrapAdmin, adminHandler.Action)
	route("GET /api/admin/publish-choices", wrapAdmin, adminHandler.Choices)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.RequestLogger(handler.SecurityHeaders(handler.NoStore(h.CORS(mux)))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "hosts", len(cfg.HostUserIDs))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
