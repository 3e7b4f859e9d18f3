package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"feeddeck/internal/feedapi"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := NewRepository(":memory:")
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReplaceCategories(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	first := []feedapi.Category{
		{ID: 5, Title: "News", Text: "news"},
		{ID: 6, Title: "Tech", Text: "tech"},
	}
	if err := r.ReplaceCategories(ctx, first); err != nil {
		t.Fatalf("replace categories: %v", err)
	}

	second := []feedapi.Category{{ID: 7, Title: "Art", Text: "art"}}
	if err := r.ReplaceCategories(ctx, second); err != nil {
		t.Fatalf("replace categories again: %v", err)
	}

	got, err := r.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceCategoryFeeds_ScopedToCategory(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	newsFeeds := []feedapi.Feed{
		{ID: 10, Title: "Daily", FeedURL: "https://daily.example/rss", CategoryID: 5},
	}
	techFeeds := []feedapi.Feed{
		{ID: 20, Title: "Bits", FeedURL: "https://bits.example/rss", CategoryID: 6},
	}
	if err := r.ReplaceCategoryFeeds(ctx, 5, newsFeeds); err != nil {
		t.Fatalf("replace news feeds: %v", err)
	}
	if err := r.ReplaceCategoryFeeds(ctx, 6, techFeeds); err != nil {
		t.Fatalf("replace tech feeds: %v", err)
	}

	// Replacing one category's feeds must not touch the other category.
	if err := r.ReplaceCategoryFeeds(ctx, 5, nil); err != nil {
		t.Fatalf("clear news feeds: %v", err)
	}

	gotNews, err := r.ListFeeds(ctx, 5)
	if err != nil {
		t.Fatalf("list news feeds: %v", err)
	}
	if len(gotNews) != 0 {
		t.Fatalf("expected no news feeds, got %d", len(gotNews))
	}

	gotTech, err := r.ListFeeds(ctx, 6)
	if err != nil {
		t.Fatalf("list tech feeds: %v", err)
	}
	if diff := cmp.Diff(techFeeds, gotTech); diff != "" {
		t.Fatalf("tech feeds mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveItems_UpsertAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []feedapi.Item{
		{ID: 1, Title: "old", URL: "https://a.example/1", FeedID: 10, CategoryID: 5, Published: base},
		{ID: 2, Title: "new", URL: "https://a.example/2", FeedID: 10, CategoryID: 5, Published: base.Add(time.Hour)},
	}
	if err := r.SaveItems(ctx, items); err != nil {
		t.Fatalf("save items: %v", err)
	}

	// Second save with the same IDs updates in place.
	items[0].Read = feedapi.Read
	if err := r.SaveItems(ctx, items[:1]); err != nil {
		t.Fatalf("save items again: %v", err)
	}

	got, err := r.ListItems(ctx, 10)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("expected newest first [2 1], got [%d %d]", got[0].ID, got[1].ID)
	}
	if !got[1].IsRead() {
		t.Fatal("expected item 1 to be read after upsert")
	}
}

func TestMarkItemRead(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	item := feedapi.Item{ID: 9, Title: "x", URL: "https://a.example/9", FeedID: 10, CategoryID: 5, Published: time.Now().UTC()}
	if err := r.SaveItems(ctx, []feedapi.Item{item}); err != nil {
		t.Fatalf("save item: %v", err)
	}
	if err := r.MarkItemRead(ctx, 9); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// Marking an item the cache never saw is a no-op.
	if err := r.MarkItemRead(ctx, 999); err != nil {
		t.Fatalf("mark missing item: %v", err)
	}

	got, err := r.ListItems(ctx, 1)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if !got[0].IsRead() {
		t.Fatal("expected item to be read")
	}
}

func TestLocationRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	loc, err := r.LoadLocation(ctx)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if loc != "" {
		t.Fatalf("expected empty location before save, got %q", loc)
	}

	if err := r.SaveLocation(ctx, "category=5&feed=10"); err != nil {
		t.Fatalf("save location: %v", err)
	}
	if err := r.SaveLocation(ctx, "category=6"); err != nil {
		t.Fatalf("overwrite location: %v", err)
	}

	loc, err = r.LoadLocation(ctx)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	if loc != "category=6" {
		t.Fatalf("expected latest location, got %q", loc)
	}
}
