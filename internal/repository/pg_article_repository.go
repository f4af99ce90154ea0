package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/published/backend/internal/model"
	"github.com/published/backend/pkg/publish"
)

const articleColumns = `a.id, a.slug, a.title, a.body, a.author_id, a.publish_status, a.live_as_of, a.created_at, a.updated_at`

// PgArticleRepository は ArticleRepository の PostgreSQL 実装
type PgArticleRepository struct {
	pool *pgxpool.Pool
}

// NewPgArticleRepository は PgArticleRepository を生成する
func NewPgArticleRepository(pool *pgxpool.Pool) *PgArticleRepository {
	return &PgArticleRepository{pool: pool}
}

// buildListQuery は一覧取得の SQL と引数を組み立てる。
// 非公開記事を除く条件は publish.VisibleCondition で生成する。
func buildListQuery(opts model.ArticleListOptions) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT " + articleColumns + " FROM articles a")

	args := []any{}
	if !opts.IncludeHidden {
		args = append(args, opts.Now)
		b.WriteString(" WHERE " + publish.VisibleCondition("a.publish_status", "a.live_as_of", len(args)))
	}
	b.WriteString(" ORDER BY COALESCE(a.live_as_of, a.created_at) DESC, a.id")

	args = append(args, opts.Limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))
	args = append(args, opts.Offset)
	fmt.Fprintf(&b, " OFFSET $%d", len(args))
	return b.String(), args
}

func scanArticle(scan func(...any) error) (*model.Article, error) {
	var a model.Article
	var status int16
	var authorID *string
	if err := scan(&a.ID, &a.Slug, &a.Title, &a.Body, &authorID, &status, &a.LiveAsOf, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if authorID != nil {
		a.AuthorID = *authorID
	}
	a.Status = publish.Status(status)
	return &a, nil
}

// List は記事一覧を返す
func (r *PgArticleRepository) List(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
	query, args := buildListQuery(opts)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *PgArticleRepository) getOne(ctx context.Context, where string, arg any) (*model.Article, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+articleColumns+" FROM articles a WHERE "+where, arg)
	a, err := scanArticle(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetBySlug は slug で記事を取得する
func (r *PgArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	return r.getOne(ctx, "a.slug = $1", slug)
}

// GetByID は ID で記事を取得する
func (r *PgArticleRepository) GetByID(ctx context.Context, id string) (*model.Article, error) {
	return r.getOne(ctx, "a.id = $1", id)
}

// Create は新しい記事を作成する
func (r *PgArticleRepository) Create(ctx context.Context, article *model.Article) error {
	var authorID *string
	if article.AuthorID != "" {
		authorID = &article.AuthorID
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO articles (slug, title, body, author_id, publish_status, live_as_of)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		article.Slug, article.Title, article.Body, authorID, int16(article.Status), article.LiveAsOf,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	return mapWriteError(err)
}

// Update は slug, title, body, 公開設定, updated_at を更新する
func (r *PgArticleRepository) Update(ctx context.Context, article *model.Article) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles
		 SET slug = $1, title = $2, body = $3, publish_status = $4, live_as_of = $5, updated_at = NOW()
		 WHERE id = $6`,
		article.Slug, article.Title, article.Body, int16(article.Status), article.LiveAsOf, article.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePublish は公開設定だけを更新する
func (r *PgArticleRepository) UpdatePublish(ctx context.Context, id string, fields publish.Fields) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles SET publish_status = $1, live_as_of = $2, updated_at = NOW() WHERE id = $3`,
		int16(fields.Status), fields.LiveAsOf, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete は記事を削除する
func (r *PgArticleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping は DB 接続を確認する
func (r *PgArticleRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
