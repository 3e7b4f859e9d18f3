// Package app composes the HTTP client and the local cache into the
// service the UI talks to. Reads go to the network and write through to
// the cache; when the network fails, cached data is served instead.
package app

import (
	"context"
	"fmt"

	"feeddeck/internal/feedapi"
)

type APIClient interface {
	ListCategories(ctx context.Context) ([]feedapi.Category, error)
	ListFeeds(ctx context.Context, categoryID, feedID *int64) ([]feedapi.Feed, error)
	ListItems(ctx context.Context, params feedapi.ListItemsParams) ([]feedapi.Item, error)
	GetItem(ctx context.Context, id int64) (feedapi.Item, error)
	MarkItemRead(ctx context.Context, id int64) error
	ToggleBookmark(ctx context.Context, id int64) (bool, error)
	MarkManyRead(ctx context.Context, scope feedapi.MarkScope) error
}

type Repository interface {
	ReplaceCategories(ctx context.Context, categories []feedapi.Category) error
	ListCategories(ctx context.Context) ([]feedapi.Category, error)
	ReplaceCategoryFeeds(ctx context.Context, categoryID int64, feeds []feedapi.Feed) error
	ListFeeds(ctx context.Context, categoryID int64) ([]feedapi.Feed, error)
	SaveItems(ctx context.Context, items []feedapi.Item) error
	ListItems(ctx context.Context, limit int) ([]feedapi.Item, error)
	MarkItemRead(ctx context.Context, id int64) error
	SaveLocation(ctx context.Context, location string) error
	LoadLocation(ctx context.Context) (string, error)
}

type Service struct {
	client APIClient
	repo   Repository
}

func NewService(client APIClient, repo Repository) *Service {
	return &Service{client: client, repo: repo}
}

// Categories fetches the category list and caches it. When the network
// fails, the cached list is returned instead.
func (s *Service) Categories(ctx context.Context) ([]feedapi.Category, error) {
	categories, err := s.client.ListCategories(ctx)
	if err != nil {
		cached, cacheErr := s.repo.ListCategories(ctx)
		if cacheErr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("fetch categories: %w", err)
		}
		return cached, nil
	}
	if err := s.repo.ReplaceCategories(ctx, categories); err != nil {
		return nil, fmt.Errorf("cache categories: %w", err)
	}
	return categories, nil
}

// CategoryFeeds fetches one category's feeds and caches them, falling
// back to the cache on network failure.
func (s *Service) CategoryFeeds(ctx context.Context, categoryID int64) ([]feedapi.Feed, error) {
	cid := categoryID
	feeds, err := s.client.ListFeeds(ctx, &cid, nil)
	if err != nil {
		cached, cacheErr := s.repo.ListFeeds(ctx, categoryID)
		if cacheErr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("fetch feeds for category %d: %w", categoryID, err)
		}
		return cached, nil
	}
	if err := s.repo.ReplaceCategoryFeeds(ctx, categoryID, feeds); err != nil {
		return nil, fmt.Errorf("cache feeds for category %d: %w", categoryID, err)
	}
	return feeds, nil
}

// ListItems fetches a page of items and writes them through to the cache.
func (s *Service) ListItems(ctx context.Context, params feedapi.ListItemsParams) ([]feedapi.Item, error) {
	items, err := s.client.ListItems(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveItems(ctx, items); err != nil {
		return nil, fmt.Errorf("cache items: %w", err)
	}
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (feedapi.Item, error) {
	item, err := s.client.GetItem(ctx, id)
	if err != nil {
		return feedapi.Item{}, err
	}
	if err := s.repo.SaveItems(ctx, []feedapi.Item{item}); err != nil {
		return feedapi.Item{}, fmt.Errorf("cache item %d: %w", id, err)
	}
	return item, nil
}

// MarkItemRead flips the read flag on the server and mirrors it in the
// cache.
func (s *Service) MarkItemRead(ctx context.Context, id int64) error {
	if err := s.client.MarkItemRead(ctx, id); err != nil {
		return err
	}
	return s.repo.MarkItemRead(ctx, id)
}

func (s *Service) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	return s.client.ToggleBookmark(ctx, id)
}

func (s *Service) MarkManyRead(ctx context.Context, scope feedapi.MarkScope) error {
	return s.client.MarkManyRead(ctx, scope)
}

// CachedItems serves the last fetched page so the UI can paint before the
// first network response arrives.
func (s *Service) CachedItems(ctx context.Context, limit int) ([]feedapi.Item, error) {
	return s.repo.ListItems(ctx, limit)
}

func (s *Service) SaveLocation(ctx context.Context, location string) error {
	return s.repo.SaveLocation(ctx, location)
}

func (s *Service) LoadLocation(ctx context.Context) (string, error) {
	return s.repo.LoadLocation(ctx)
}
