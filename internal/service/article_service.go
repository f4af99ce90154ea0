package service

import (
	"context"

	"github.com/published/backend/internal/model"
	"github.com/published/backend/pkg/publish"
)

// ArticleService は記事の公開制御を含むビジネスロジックのインターフェース
type ArticleService interface {
	// List は閲覧者に見える記事一覧を返す。privileged=true なら非公開記事も含む。
	List(ctx context.Context, privileged bool, limit, offset int) ([]*model.Article, error)
	// GetBySlug は閲覧者に見える記事を返す。存在しない記事と非公開記事はどちらも publish.ErrNotFound
	GetBySlug(ctx context.Context, slug string, privileged bool) (*model.Article, error)
	// AdminList は管理画面向けに全記事の公開状態サマリを返す
	AdminList(ctx context.Context, limit, offset int) ([]model.ArticleSummary, error)
	// GetByID は管理画面向けに記事を返す（公開制御なし）
	GetByID(ctx context.Context, id string) (*model.Article, error)
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	// ApplyAction は管理アクションで公開設定を変更し、変更後の記事を返す
	ApplyAction(ctx context.Context, id string, action publish.Action) (*model.Article, error)
	Delete(ctx context.Context, id string) error
}
