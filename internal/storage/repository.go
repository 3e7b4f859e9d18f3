// Package storage caches the last fetched snapshot in a local SQLite
// database so the UI can paint immediately on the next launch, and
// persists small pieces of app state such as the last location.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"feeddeck/internal/feedapi"
	"feeddeck/migrations"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens the SQLite database at path and applies pending
// migrations. Use ":memory:" for an ephemeral database.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// ReplaceCategories swaps the cached category list for the given one.
func (r *Repository) ReplaceCategories(ctx context.Context, categories []feedapi.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, cat := range categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, title, text) VALUES (?, ?, ?)`,
			cat.ID, cat.Title, cat.Text,
		)
		if err != nil {
			return fmt.Errorf("save category %d: %w", cat.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]feedapi.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, text FROM categories ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []feedapi.Category
	for rows.Next() {
		var cat feedapi.Category
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.Text); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return categories, nil
}

// ReplaceCategoryFeeds swaps the cached feed list for a single category.
func (r *Repository) ReplaceCategoryFeeds(ctx context.Context, categoryID int64, feeds []feedapi.Feed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("clear feeds for category %d: %w", categoryID, err)
	}
	for _, feed := range feeds {
		_, err := tx.ExecContext(ctx, `
INSERT INTO feeds (id, feed_url, url, title, category_id, items_count, error, update_frequency)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  feed_url=excluded.feed_url,
  url=excluded.url,
  title=excluded.title,
  category_id=excluded.category_id,
  items_count=excluded.items_count,
  error=excluded.error,
  update_frequency=excluded.update_frequency
`,
			feed.ID, feed.FeedURL, feed.URL, feed.Title, categoryID,
			feed.ItemsCount, feed.Error, feed.UpdateFrequency,
		)
		if err != nil {
			return fmt.Errorf("save feed %d: %w", feed.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) ListFeeds(ctx context.Context, categoryID int64) ([]feedapi.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, feed_url, url, title, category_id, items_count, error, update_frequency
FROM feeds
WHERE category_id = ?
ORDER BY title
`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []feedapi.Feed
	for rows.Next() {
		var feed feedapi.Feed
		if err := rows.Scan(
			&feed.ID,
			&feed.FeedURL,
			&feed.URL,
			&feed.Title,
			&feed.CategoryID,
			&feed.ItemsCount,
			&feed.Error,
			&feed.UpdateFrequency,
		); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return feeds, nil
}

// SaveItems upserts the given items into the cache.
func (r *Repository) SaveItems(ctx context.Context, items []feedapi.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO items (id, title, url, feed_id, feed_title, category_id, published_at, read, bookmarked, content, comments)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  url=excluded.url,
  feed_id=excluded.feed_id,
  feed_title=excluded.feed_title,
  category_id=excluded.category_id,
  published_at=excluded.published_at,
  read=excluded.read,
  bookmarked=excluded.bookmarked,
  content=excluded.content,
  comments=excluded.comments
`)
	if err != nil {
		return fmt.Errorf("prepare save statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(
			ctx,
			item.ID,
			item.Title,
			item.URL,
			item.FeedID,
			item.FeedTitle,
			item.CategoryID,
			item.Published.UTC().Format(time.RFC3339Nano),
			item.Read,
			item.Bookmarked,
			item.Content,
			item.Comments,
		)
		if err != nil {
			return fmt.Errorf("save item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListItems returns cached items, newest first.
func (r *Repository) ListItems(ctx context.Context, limit int) ([]feedapi.Item, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, url, feed_id, feed_title, category_id, published_at, read, bookmarked, content, comments
FROM items
ORDER BY published_at DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]feedapi.Item, 0, limit)
	for rows.Next() {
		var item feedapi.Item
		var published string
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.URL,
			&item.FeedID,
			&item.FeedTitle,
			&item.CategoryID,
			&published,
			&item.Read,
			&item.Bookmarked,
			&item.Content,
			&item.Comments,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		item.Published, err = time.Parse(time.RFC3339Nano, published)
		if err != nil {
			return nil, fmt.Errorf("parse item published_at %q: %w", published, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return items, nil
}

// MarkItemRead updates the read flag on a cached item. Missing rows are
// not an error; the cache may simply not hold that item.
func (r *Repository) MarkItemRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE items SET read = ? WHERE id = ?`, feedapi.Read, id)
	if err != nil {
		return fmt.Errorf("mark item %d read: %w", id, err)
	}
	return nil
}

const locationKey = "location"

// SaveLocation persists the serialized selection so the next launch can
// restore it.
func (r *Repository) SaveLocation(ctx context.Context, location string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO app_state (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`, locationKey, location)
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

// LoadLocation returns the persisted selection, or "" when none was saved.
func (r *Repository) LoadLocation(ctx context.Context) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, locationKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load location: %w", err)
	}
	return value, nil
}
