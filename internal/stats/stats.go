// Package stats maintains the unread counters shown next to feeds and
// categories. Refreshes are idempotent and safe to call concurrently; the
// working copy is swapped atomically under a lock.
package stats

import (
	"context"
	"strconv"
	"sync"
	"time"

	"feeddeck/internal/feedapi"
)

// RefreshInterval is the background cadence between full stat refreshes.
const RefreshInterval = 60 * time.Second

type Client interface {
	FeedReadStats(ctx context.Context) ([]feedapi.ReadStat, error)
	CategoryReadStats(ctx context.Context) ([]feedapi.ReadStat, error)
}

type Aggregator struct {
	client Client

	mu         sync.RWMutex
	feeds      map[int64]int
	categories map[int64]int
}

func New(client Client) *Aggregator {
	return &Aggregator{
		client:     client,
		feeds:      map[int64]int{},
		categories: map[int64]int{},
	}
}

func (a *Aggregator) RefreshFeedStats(ctx context.Context) error {
	rows, err := a.client.FeedReadStats(ctx)
	if err != nil {
		return err
	}
	next := make(map[int64]int, len(rows))
	for _, row := range rows {
		next[row.ID] = row.UnreadCount
	}

	a.mu.Lock()
	a.feeds = next
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) RefreshCategoryStats(ctx context.Context) error {
	rows, err := a.client.CategoryReadStats(ctx)
	if err != nil {
		return err
	}
	next := make(map[int64]int, len(rows))
	for _, row := range rows {
		next[row.ID] = row.UnreadCount
	}

	a.mu.Lock()
	a.categories = next
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) FeedUnread(id int64) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.feeds[id]
}

func (a *Aggregator) CategoryUnread(id int64) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.categories[id]
}

// TotalUnread is the unread count of the root All scope: the sum of all
// per-category counts.
func (a *Aggregator) TotalUnread() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	total := 0
	for _, n := range a.categories {
		total += n
	}
	return total
}

// Badge renders an unread counter. Zero renders no badge, not "0".
func Badge(count int) string {
	if count <= 0 {
		return ""
	}
	return strconv.Itoa(count)
}
