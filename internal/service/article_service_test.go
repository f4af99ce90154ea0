package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/published/backend/internal/metrics"
	"github.com/published/backend/internal/model"
	"github.com/published/backend/internal/repository"
	"github.com/published/backend/pkg/publish"
)

// ---------------------------------------------------------------------------
// mockArticleRepository: ArticleRepository のモック
// ---------------------------------------------------------------------------

type mockArticleRepository struct {
	listFunc          func(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error)
	getBySlugFunc     func(ctx context.Context, slug string) (*model.Article, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.Article, error)
	createFunc        func(ctx context.Context, article *model.Article) error
	updateFunc        func(ctx context.Context, article *model.Article) error
	updatePublishFunc func(ctx context.Context, id string, fields publish.Fields) error
	deleteFunc        func(ctx context.Context, id string) error
}

func (m *mockArticleRepository) List(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	if m.getBySlugFunc != nil {
		return m.getBySlugFunc(ctx, slug)
	}
	return nil, repository.ErrNotFound
}

func (m *mockArticleRepository) GetByID(ctx context.Context, id string) (*model.Article, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockArticleRepository) Create(ctx context.Context, article *model.Article) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, article)
	}
	return nil
}

func (m *mockArticleRepository) Update(ctx context.Context, article *model.Article) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, article)
	}
	return nil
}

func (m *mockArticleRepository) UpdatePublish(ctx context.Context, id string, fields publish.Fields) error {
	if m.updatePublishFunc != nil {
		return m.updatePublishFunc(ctx, id, fields)
	}
	return nil
}

func (m *mockArticleRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

var testNow = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func timePtr(t time.Time) *time.Time { return &t }

// ---------------------------------------------------------------------------
// Tests: ArticleService.List
// ---------------------------------------------------------------------------

func TestArticleService_List_PassesGatingOptions(t *testing.T) {
	var captured model.ArticleListOptions
	mock := &mockArticleRepository{
		listFunc: func(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
			captured = opts
			return nil, nil
		},
	}

	svc := NewArticleService(mock, WithClock(fixedClock))
	got, err := svc.List(context.Background(), false, 20, 40)
	if err != nil {
		t.Fatalf("List returned unexpected error: %v", err)
	}
	if captured.IncludeHidden {
		t.Error("expected IncludeHidden=false for public viewer")
	}
	if !captured.Now.Equal(testNow) {
		t.Errorf("expected Now=%v, got %v", testNow, captured.Now)
	}
	if captured.Limit != 20 || captured.Offset != 40 {
		t.Errorf("expected limit/offset 20/40, got %d/%d", captured.Limit, captured.Offset)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestArticleService_List_ReappliesPredicate(t *testing.T) {
	// SQL 条件をすり抜けた行があってもコード側の判定で除外される
	mock := &mockArticleRepository{
		listFunc: func(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
			return []*model.Article{
				{ID: "1", Fields: publish.Fields{Status: publish.NeverAvailable}},
				{ID: "2", Fields: publish.Fields{Status: publish.Available}},
				{ID: "3", Fields: publish.Fields{Status: publish.AvailableAfter, LiveAsOf: timePtr(testNow.Add(-time.Hour))}},
				{ID: "4", Fields: publish.Fields{Status: publish.AvailableAfter, LiveAsOf: timePtr(testNow.Add(time.Hour))}},
			}, nil
		},
	}

	svc := NewArticleService(mock, WithClock(fixedClock))
	got, err := svc.List(context.Background(), false, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		ids := make([]string, len(got))
		for i, a := range got {
			ids[i] = a.ID
		}
		t.Errorf("expected [2 3], got %v", ids)
	}
}

func TestArticleService_List_PrivilegedSeesAll(t *testing.T) {
	var captured model.ArticleListOptions
	mock := &mockArticleRepository{
		listFunc: func(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
			captured = opts
			return []*model.Article{
				{ID: "1", Fields: publish.Fields{Status: publish.NeverAvailable}},
				{ID: "2"},
			}, nil
		},
	}

	svc := NewArticleService(mock, WithClock(fixedClock))
	got, err := svc.List(context.Background(), true, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !captured.IncludeHidden {
		t.Error("expected IncludeHidden=true for privileged viewer")
	}
	if len(got) != 2 {
		t.Errorf("expected 2 articles, got %d", len(got))
	}
}

func TestArticleService_List_RepositoryError(t *testing.T) {
	dbErr := errors.New("db down")
	mock := &mockArticleRepository{
		listFunc: func(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
			return nil, dbErr
		},
	}

	svc := NewArticleService(mock)
	_, err := svc.List(context.Background(), false, 10, 0)
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Tests: ArticleService.GetBySlug
// ---------------------------------------------------------------------------

func TestArticleService_GetBySlug_Visible(t *testing.T) {
	mock := &mockArticleRepository{
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: "1", Slug: slug, Fields: publish.Fields{
				Status: publish.AvailableAfter, LiveAsOf: timePtr(testNow),
			}}, nil
		},
	}

	svc := NewArticleService(mock, WithClock(fixedClock))
	got, err := svc.GetBySlug(context.Background(), "hello", false)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Slug != "hello" {
		t.Errorf("expected slug hello, got %q", got.Slug)
	}
}

func TestArticleService_GetBySlug_HiddenAndMissingAreIndistinguishable(t *testing.T) {
	hidden := &mockArticleRepository{
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: "1", Slug: slug, Fields: publish.Fields{
				Status: publish.AvailableAfter, LiveAsOf: timePtr(testNow.Add(time.Minute)),
			}}, nil
		},
	}
	missing := &mockArticleRepository{}

	_, hiddenErr := NewArticleService(hidden, WithClock(fixedClock)).GetBySlug(context.Background(), "x", false)
	_, missingErr := NewArticleService(missing, WithClock(fixedClock)).GetBySlug(context.Background(), "x", false)

	if !errors.Is(hiddenErr, publish.ErrNotFound) {
		t.Errorf("expected publish.ErrNotFound for hidden article, got %v", hiddenErr)
	}
	if hiddenErr != missingErr {
		t.Errorf("hidden (%v) and missing (%v) must return the same error", hiddenErr, missingErr)
	}
}

// detailGateSnapshot は詳細ゲートの各 outcome のカウンタ値を返す
func detailGateSnapshot() map[string]float64 {
	out := map[string]float64{}
	for _, o := range []string{metrics.OutcomeShown, metrics.OutcomeHidden, metrics.OutcomeNotFound} {
		out[o] = testutil.ToFloat64(metrics.GateDecisions.WithLabelValues(metrics.GateDetail, o))
	}
	return out
}

func detailGateDelta(before, after map[string]float64) map[string]float64 {
	d := map[string]float64{}
	for k, v := range after {
		d[k] = v - before[k]
	}
	return d
}

func TestArticleService_GetBySlug_HiddenAndMissingLeaveSameMetrics(t *testing.T) {
	hidden := &mockArticleRepository{
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: "1", Slug: slug, Fields: publish.Fields{Status: publish.NeverAvailable}}, nil
		},
	}
	missing := &mockArticleRepository{}

	before := detailGateSnapshot()
	if _, err := NewArticleService(hidden, WithClock(fixedClock)).GetBySlug(context.Background(), "secret", false); !errors.Is(err, publish.ErrNotFound) {
		t.Fatalf("expected publish.ErrNotFound, got %v", err)
	}
	hiddenDelta := detailGateDelta(before, detailGateSnapshot())

	before = detailGateSnapshot()
	if _, err := NewArticleService(missing, WithClock(fixedClock)).GetBySlug(context.Background(), "nope", false); !errors.Is(err, publish.ErrNotFound) {
		t.Fatalf("expected publish.ErrNotFound, got %v", err)
	}
	missingDelta := detailGateDelta(before, detailGateSnapshot())

	for outcome, h := range hiddenDelta {
		if h != missingDelta[outcome] {
			t.Errorf("outcome %q: hidden lookup added %v, missing lookup added %v", outcome, h, missingDelta[outcome])
		}
	}
	if missingDelta[metrics.OutcomeNotFound] != 1 {
		t.Errorf("expected one not_found decision, got %v", missingDelta[metrics.OutcomeNotFound])
	}
}

func TestArticleService_GetBySlug_PrivilegedPreview(t *testing.T) {
	mock := &mockArticleRepository{
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: "1", Slug: slug, Fields: publish.Fields{Status: publish.NeverAvailable}}, nil
		},
	}

	svc := NewArticleService(mock, WithClock(fixedClock))
	got, err := svc.GetBySlug(context.Background(), "draft", true)
	if err != nil {
		t.Fatalf("expected privileged viewer to see never-available article, got %v", err)
	}
	if got.ID != "1" {
		t.Errorf("expected article 1, got %q", got.ID)
	}
}

func TestArticleService_GetBySlug_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection reset")
	mock := &mockArticleRepository{
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Article, error) {
			return nil, dbErr
		},
	}

	_, err := NewArticleService(mock).GetBySlug(context.Background(), "x", false)
	if !errors.Is(err, dbErr) {
		t.Errorf("expected db error to propagate, got %v", err)
	}
	if errors.Is(err, publish.ErrNotFound) {
		t.Error("db errors must not be reported as not found")
	}
}

// ---------------------------------------------------------------------------
// Tests: ArticleService.AdminList
// ---------------------------------------------------------------------------

func TestArticleService_AdminList_BuildsSummaries(t *testing.T) {
	var captured model.ArticleListOptions
	mock := &mockArticleRepository{
		listFunc: func(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, error) {
			captured = opts
			return []*model.Article{
				{ID: "1", Fields: publish.Fields{Status: publish.NeverAvailable}},
				{ID: "2", Fields: publish.Fields{Status: publish.AvailableAfter}},
			}, nil
		},
	}

	got, err := NewArticleService(mock).AdminList(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("AdminList: %v", err)
	}
	if !captured.IncludeHidden {
		t.Error("admin listing must include hidden articles")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].StatusSummary != "Never Available" {
		t.Errorf("unexpected summary %q", got[0].StatusSummary)
	}
	if got[1].StatusSummary != "Available After: not set" {
		t.Errorf("unexpected summary %q", got[1].StatusSummary)
	}
	if got[1].PublishStatus != "available_after" {
		t.Errorf("unexpected status %q", got[1].PublishStatus)
	}
}

// ---------------------------------------------------------------------------
// Tests: ArticleService.Create / Update
// ---------------------------------------------------------------------------

func TestArticleService_Create_KeepsDraftDefault(t *testing.T) {
	var saved *model.Article
	mock := &mockArticleRepository{
		createFunc: func(ctx context.Context, article *model.Article) error {
			saved = article
			article.ID = "new-id"
			return nil
		},
	}

	a := &model.Article{Slug: "new", Title: "New", Body: "body"}
	if err := NewArticleService(mock).Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if saved.Fields != publish.Draft() {
		t.Errorf("expected draft fields, got %+v", saved.Fields)
	}
	if a.ID != "new-id" {
		t.Errorf("expected ID to be set by repository, got %q", a.ID)
	}
}

func TestArticleService_Update_SetsUpdatedAt(t *testing.T) {
	var saved *model.Article
	mock := &mockArticleRepository{
		updateFunc: func(ctx context.Context, article *model.Article) error {
			saved = article
			return nil
		},
	}

	a := &model.Article{ID: "1"}
	if err := NewArticleService(mock, WithClock(fixedClock)).Update(context.Background(), a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !saved.UpdatedAt.Equal(testNow) {
		t.Errorf("expected UpdatedAt=%v, got %v", testNow, saved.UpdatedAt)
	}
}

// ---------------------------------------------------------------------------
// Tests: ArticleService.ApplyAction
// ---------------------------------------------------------------------------

func TestArticleService_ApplyAction_TakeOnlineNow(t *testing.T) {
	var savedID string
	var savedFields publish.Fields
	mock := &mockArticleRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Article, error) {
			return &model.Article{ID: id, Fields: publish.Fields{Status: publish.NeverAvailable}}, nil
		},
		updatePublishFunc: func(ctx context.Context, id string, fields publish.Fields) error {
			savedID = id
			savedFields = fields
			return nil
		},
	}

	svc := NewArticleService(mock, WithClock(fixedClock))
	got, err := svc.ApplyAction(context.Background(), "a1", publish.ActionTakeOnlineNow)
	if err != nil {
		t.Fatalf("ApplyAction: %v", err)
	}
	if savedID != "a1" {
		t.Errorf("expected id a1, got %q", savedID)
	}
	if savedFields.Status != publish.AvailableAfter || savedFields.LiveAsOf == nil || !savedFields.LiveAsOf.Equal(testNow) {
		t.Errorf("unexpected saved fields %+v", savedFields)
	}
	if !got.AvailableToPublic(testNow) {
		t.Error("article should be public right after take_online_now")
	}
}

func TestArticleService_ApplyAction_NotFound(t *testing.T) {
	called := false
	mock := &mockArticleRepository{
		updatePublishFunc: func(ctx context.Context, id string, fields publish.Fields) error {
			called = true
			return nil
		},
	}

	_, err := NewArticleService(mock).ApplyAction(context.Background(), "missing", publish.ActionTakeOffline)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected repository.ErrNotFound, got %v", err)
	}
	if called {
		t.Error("UpdatePublish must not be called for a missing article")
	}
}

func TestArticleService_ApplyAction_UnknownAction(t *testing.T) {
	mock := &mockArticleRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Article, error) {
			return &model.Article{ID: id}, nil
		},
	}

	_, err := NewArticleService(mock).ApplyAction(context.Background(), "a1", publish.Action("explode"))
	if err == nil {
		t.Error("expected error for unknown action")
	}
}
