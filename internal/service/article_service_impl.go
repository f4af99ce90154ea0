package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/published/backend/internal/metrics"
	"github.com/published/backend/internal/model"
	"github.com/published/backend/internal/repository"
	"github.com/published/backend/pkg/publish"
)

// ArticleServiceImpl は ArticleService の実装
type ArticleServiceImpl struct {
	repo repository.ArticleRepository
	now  func() time.Time
}

// Option は ArticleServiceImpl の設定を変更する
type Option func(*ArticleServiceImpl)

// WithClock は現在時刻の取得関数を差し替える（テスト用）
func WithClock(now func() time.Time) Option {
	return func(s *ArticleServiceImpl) { s.now = now }
}

// NewArticleService は ArticleServiceImpl を生成する
func NewArticleService(repo repository.ArticleRepository, opts ...Option) ArticleService {
	s := &ArticleServiceImpl{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List は公開判定を SQL とコードの両方で行う。
// SQL の条件で件数を絞り、publish.FilterVisible で同じ時刻を使って再確認する。
func (s *ArticleServiceImpl) List(ctx context.Context, privileged bool, limit, offset int) ([]*model.Article, error) {
	now := s.now()
	articles, err := s.repo.List(ctx, model.ArticleListOptions{
		Limit:         limit,
		Offset:        offset,
		IncludeHidden: privileged,
		Now:           now,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	visible := publish.FilterVisible(articles, now, privileged)
	metrics.ObserveListGate(len(articles), len(visible))
	if len(visible) != len(articles) {
		slog.Warn("listing returned records hidden by the visibility predicate",
			"candidates", len(articles), "visible", len(visible))
	}
	return visible, nil
}

// GetBySlug は存在しない記事と非公開記事を同じ publish.ErrNotFound で返す
func (s *ArticleServiceImpl) GetBySlug(ctx context.Context, slug string, privileged bool) (*model.Article, error) {
	article, err := s.repo.GetBySlug(ctx, slug)
	found := true
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("get article %q: %w", slug, err)
		}
		found = false
	}

	resolved, err := publish.ResolveOrNotFound(article, found, s.now(), privileged)
	// 非公開と不存在は /metrics 上でも区別しない
	if err != nil {
		metrics.ObserveDetailGate(metrics.OutcomeNotFound)
		return nil, err
	}
	metrics.ObserveDetailGate(metrics.OutcomeShown)
	return resolved, nil
}

// AdminList は全記事の公開状態サマリを返す
func (s *ArticleServiceImpl) AdminList(ctx context.Context, limit, offset int) ([]model.ArticleSummary, error) {
	articles, err := s.repo.List(ctx, model.ArticleListOptions{Limit: limit, Offset: offset, IncludeHidden: true})
	if err != nil {
		return nil, fmt.Errorf("admin list articles: %w", err)
	}
	summaries := make([]model.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		summaries = append(summaries, model.NewArticleSummary(a))
	}
	return summaries, nil
}

// GetByID は ID で記事を取得する
func (s *ArticleServiceImpl) GetByID(ctx context.Context, id string) (*model.Article, error) {
	return s.repo.GetByID(ctx, id)
}

// Create は新しい記事を作成する。公開設定はハンドラが決めた値をそのまま保存する
// （未指定ならゼロ値＝下書き）。
func (s *ArticleServiceImpl) Create(ctx context.Context, article *model.Article) error {
	if err := s.repo.Create(ctx, article); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	slog.Info("article created", "id", article.ID, "slug", article.Slug, "publish_status", article.Status.String())
	return nil
}

// Update は記事を保存する。updated_at を現在時刻にセットする。
func (s *ArticleServiceImpl) Update(ctx context.Context, article *model.Article) error {
	article.UpdatedAt = s.now()
	return s.repo.Update(ctx, article)
}

// ApplyAction は現在の公開設定にアクションを適用して保存する
func (s *ArticleServiceImpl) ApplyAction(ctx context.Context, id string, action publish.Action) (*model.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	fields, err := action.Apply(article.Fields, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePublish(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("apply %s to article %s: %w", action, id, err)
	}
	article.Fields = fields
	article.UpdatedAt = now
	slog.Info("publish action applied", "id", id, "action", string(action), "summary", fields.Summary())
	return article, nil
}

// Delete は記事を削除する
func (s *ArticleServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
