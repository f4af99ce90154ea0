package repository

import (
	"context"

	"github.com/published/backend/internal/model"
	"github.com/published/backend/pkg/publish"
)

// ArticleRepository は記事の永続化インターフェース
type ArticleRepository interface {
	// List は記事一覧を新しい順に返す。
	// opts.IncludeHidden=false の場合、opts.Now 時点で公開中のものだけ返す。
	List(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error)
	// GetBySlug は slug で記事を取得する。見つからない場合は ErrNotFound
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)
	// GetByID は ID で記事を取得する。見つからない場合は ErrNotFound
	GetByID(ctx context.Context, id string) (*model.Article, error)
	// Create は新しい記事を作成し、ID と日時をセットする
	Create(ctx context.Context, article *model.Article) error
	// Update は slug, title, body, 公開設定を更新する
	Update(ctx context.Context, article *model.Article) error
	// UpdatePublish は公開設定だけを更新する
	UpdatePublish(ctx context.Context, id string, fields publish.Fields) error
	// Delete は記事を削除する
	Delete(ctx context.Context, id string) error
}
