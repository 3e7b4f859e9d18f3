// Package nav owns the hierarchical selection state machine. Transitions are
// pure: they take a State snapshot and return the successor state plus the
// effects the caller must run. No I/O happens here.
package nav

import (
	"fmt"

	"feeddeck/internal/feedapi"
)

type Level string

const (
	LevelCategories Level = "categories"
	LevelItems      Level = "items"
)

// State is the serializable navigation snapshot. A nil SelectedCategory is
// the virtual All scope. Exactly one of {All, a category, a feed} narrows
// item queries at any time.
type State struct {
	Categories    []feedapi.Category
	CategoryFeeds map[int64][]feedapi.Feed
	Items         []feedapi.Item

	SelectedCategory *int64
	SelectedFeed     *int64
	SelectedItem     *int64
	Article          *feedapi.Item
	ArticleLoading   bool

	ExpandedCategory *int64
	ActiveNav        Level

	UnreadOnly      bool
	BookmarkedOnly  bool
	ItemCategoryIDs []int64

	PageSize        int
	DefaultPageSize int
}

func NewState(pageSize int) State {
	return State{
		CategoryFeeds:   map[int64][]feedapi.Feed{},
		ActiveNav:       LevelCategories,
		PageSize:        pageSize,
		DefaultPageSize: pageSize,
	}
}

// ListParams derives the item query for the active scope. A selected feed
// narrows by fid alone; otherwise a selected category narrows by cid.
func (s State) ListParams() feedapi.ListItemsParams {
	p := feedapi.ListItemsParams{
		Size:            s.PageSize,
		Unread:          s.UnreadOnly,
		Bookmarked:      s.BookmarkedOnly,
		ItemCategoryIDs: s.ItemCategoryIDs,
	}
	switch {
	case s.SelectedFeed != nil:
		p.FeedID = cloneID(s.SelectedFeed)
	case s.SelectedCategory != nil:
		p.CategoryID = cloneID(s.SelectedCategory)
	}
	return p
}

// Scope derives the bulk mark-read target for the active scope.
func (s State) Scope() feedapi.MarkScope {
	switch {
	case s.SelectedFeed != nil:
		return feedapi.MarkScope{FeedID: cloneID(s.SelectedFeed)}
	case s.SelectedCategory != nil:
		return feedapi.MarkScope{CategoryID: cloneID(s.SelectedCategory)}
	default:
		return feedapi.MarkScope{}
	}
}

// Effect is an instruction for the caller: network calls, location writes,
// focus and scroll requests. Effects run outside the reducer.
type Effect interface{ effect() }

type FetchList struct{ Params feedapi.ListItemsParams }
type FetchItem struct{ ID int64 }
type MarkRead struct{ ID int64 }
type MarkScopeRead struct{ Scope feedapi.MarkScope }
type WriteLocation struct{ CategoryID, FeedID *int64 }
type LoadCategoryFeeds struct{ CategoryID int64 }
type RefreshFeedStats struct{}
type Focus struct{ Anchor string }
type ScrollTop struct{}
type OpenURL struct{ URL string }

func (FetchList) effect()         {}
func (FetchItem) effect()         {}
func (MarkRead) effect()          {}
func (MarkScopeRead) effect()     {}
func (WriteLocation) effect()     {}
func (LoadCategoryFeeds) effect() {}
func (RefreshFeedStats) effect()  {}
func (Focus) effect()             {}
func (ScrollTop) effect()         {}
func (OpenURL) effect()           {}

func CategoryAnchor(id *int64) string {
	if id == nil {
		return "category-all"
	}
	return fmt.Sprintf("category-%d", *id)
}

func FeedAnchor(id int64) string { return fmt.Sprintf("feed-%d", id) }

func ItemAnchor(id int64) string { return fmt.Sprintf("item-%d", id) }

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func idsEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func itemIndex(items []feedapi.Item, id int64) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func feedIndex(feeds []feedapi.Feed, id int64) int {
	for i, f := range feeds {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// rail is the ordered category-level walk surface: the All scope followed by
// every category.
func (s State) rail() []*int64 {
	out := make([]*int64, 0, len(s.Categories)+1)
	out = append(out, nil)
	for i := range s.Categories {
		out = append(out, &s.Categories[i].ID)
	}
	return out
}

func (s State) railIndex(id *int64) int {
	for i, rid := range s.rail() {
		if idsEqual(rid, id) {
			return i
		}
	}
	return -1
}

func (s State) expandedFeeds() []feedapi.Feed {
	if s.ExpandedCategory == nil {
		return nil
	}
	return s.CategoryFeeds[*s.ExpandedCategory]
}

func (s State) isExpanded(id *int64) bool {
	return id != nil && idsEqual(s.ExpandedCategory, id)
}
