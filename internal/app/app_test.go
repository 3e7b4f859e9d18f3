package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"feeddeck/internal/feedapi"
)

type fakeClient struct {
	categories []feedapi.Category
	feeds      []feedapi.Feed
	items      []feedapi.Item
	err        error

	markedRead []int64
	markScopes []feedapi.MarkScope
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]feedapi.Category, error) {
	return f.categories, f.err
}

func (f *fakeClient) ListFeeds(ctx context.Context, categoryID, feedID *int64) ([]feedapi.Feed, error) {
	return f.feeds, f.err
}

func (f *fakeClient) ListItems(ctx context.Context, params feedapi.ListItemsParams) ([]feedapi.Item, error) {
	return f.items, f.err
}

func (f *fakeClient) GetItem(ctx context.Context, id int64) (feedapi.Item, error) {
	if f.err != nil {
		return feedapi.Item{}, f.err
	}
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return feedapi.Item{}, errors.New("not found")
}

func (f *fakeClient) MarkItemRead(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeClient) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	return true, f.err
}

func (f *fakeClient) MarkManyRead(ctx context.Context, scope feedapi.MarkScope) error {
	if f.err != nil {
		return f.err
	}
	f.markScopes = append(f.markScopes, scope)
	return nil
}

type fakeRepo struct {
	categories []feedapi.Category
	feeds      map[int64][]feedapi.Feed
	items      []feedapi.Item
	location   string
	markedRead []int64
	saveErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{feeds: map[int64][]feedapi.Feed{}}
}

func (f *fakeRepo) ReplaceCategories(ctx context.Context, categories []feedapi.Category) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.categories = categories
	return nil
}

func (f *fakeRepo) ListCategories(ctx context.Context) ([]feedapi.Category, error) {
	return f.categories, nil
}

func (f *fakeRepo) ReplaceCategoryFeeds(ctx context.Context, categoryID int64, feeds []feedapi.Feed) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.feeds[categoryID] = feeds
	return nil
}

func (f *fakeRepo) ListFeeds(ctx context.Context, categoryID int64) ([]feedapi.Feed, error) {
	return f.feeds[categoryID], nil
}

func (f *fakeRepo) SaveItems(ctx context.Context, items []feedapi.Item) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeRepo) ListItems(ctx context.Context, limit int) ([]feedapi.Item, error) {
	if limit > len(f.items) {
		limit = len(f.items)
	}
	return f.items[:limit], nil
}

func (f *fakeRepo) MarkItemRead(ctx context.Context, id int64) error {
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeRepo) SaveLocation(ctx context.Context, location string) error {
	f.location = location
	return nil
}

func (f *fakeRepo) LoadLocation(ctx context.Context) (string, error) {
	return f.location, nil
}

func TestCategories_CachesOnSuccess(t *testing.T) {
	client := &fakeClient{categories: []feedapi.Category{{ID: 5, Title: "News"}}}
	repo := newFakeRepo()
	svc := NewService(client, repo)

	got, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("unexpected categories: %+v", got)
	}
	if len(repo.categories) != 1 {
		t.Fatal("expected categories written through to cache")
	}
}

func TestCategories_FallsBackToCache(t *testing.T) {
	client := &fakeClient{err: errors.New("network down")}
	repo := newFakeRepo()
	repo.categories = []feedapi.Category{{ID: 6, Title: "Tech"}}
	svc := NewService(client, repo)

	got, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("expected cache fallback, got error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 6 {
		t.Fatalf("unexpected categories: %+v", got)
	}
}

func TestCategories_EmptyCachePropagatesError(t *testing.T) {
	client := &fakeClient{err: errors.New("network down")}
	svc := NewService(client, newFakeRepo())

	if _, err := svc.Categories(context.Background()); err == nil {
		t.Fatal("expected error when both network and cache are empty")
	}
}

func TestListItems_WritesThroughToCache(t *testing.T) {
	client := &fakeClient{items: []feedapi.Item{
		{ID: 1, Title: "a", Published: time.Now().UTC()},
		{ID: 2, Title: "b", Published: time.Now().UTC()},
	}}
	repo := newFakeRepo()
	svc := NewService(client, repo)

	got, err := svc.ListItems(context.Background(), feedapi.ListItemsParams{Size: 20})
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if len(repo.items) != 2 {
		t.Fatal("expected items written through to cache")
	}
}

func TestMarkItemRead_MirrorsIntoCache(t *testing.T) {
	client := &fakeClient{}
	repo := newFakeRepo()
	svc := NewService(client, repo)

	if err := svc.MarkItemRead(context.Background(), 42); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if len(client.markedRead) != 1 || client.markedRead[0] != 42 {
		t.Fatalf("expected server mark, got %v", client.markedRead)
	}
	if len(repo.markedRead) != 1 || repo.markedRead[0] != 42 {
		t.Fatalf("expected cache mirror, got %v", repo.markedRead)
	}
}

func TestMarkItemRead_ServerFailureSkipsCache(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	repo := newFakeRepo()
	svc := NewService(client, repo)

	if err := svc.MarkItemRead(context.Background(), 42); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.markedRead) != 0 {
		t.Fatal("cache must not be touched when the server call fails")
	}
}

func TestCategoryFeeds_FallsBackToCache(t *testing.T) {
	client := &fakeClient{err: errors.New("network down")}
	repo := newFakeRepo()
	repo.feeds[5] = []feedapi.Feed{{ID: 10, Title: "Daily", CategoryID: 5}}
	svc := NewService(client, repo)

	got, err := svc.CategoryFeeds(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected cache fallback, got error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("unexpected feeds: %+v", got)
	}
}
