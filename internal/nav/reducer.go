package nav

import "feeddeck/internal/feedapi"

// SelectCategory activates a category scope (nil id for All). viaChevron
// marks a click on the expansion chevron rather than the row itself: it
// additionally toggles expansion, collapsing any other expanded category,
// lazily loading the category's feed list and refreshing feed stats.
func SelectCategory(s State, id *int64, viaChevron bool) (State, []Effect) {
	s.SelectedCategory = cloneID(id)
	s.SelectedFeed = nil
	s.SelectedItem = nil
	s.Article = nil
	s.ArticleLoading = false
	s.PageSize = s.DefaultPageSize
	s.UnreadOnly = false
	s.BookmarkedOnly = false
	s.ItemCategoryIDs = nil
	s.ActiveNav = LevelCategories

	effects := []Effect{
		ScrollTop{},
		WriteLocation{CategoryID: cloneID(id)},
		Focus{Anchor: CategoryAnchor(id)},
	}

	if viaChevron && id != nil {
		var extra []Effect
		s, extra = toggleExpansion(s, *id)
		effects = append(effects, extra...)
	}

	effects = append(effects, FetchList{Params: s.ListParams()})
	return s, effects
}

// SelectFeed activates a feed scope.
func SelectFeed(s State, feed feedapi.Feed) (State, []Effect) {
	cat := feed.CategoryID
	s.SelectedCategory = &cat
	fid := feed.ID
	s.SelectedFeed = &fid
	s.SelectedItem = nil
	s.Article = nil
	s.ArticleLoading = false
	s.PageSize = s.DefaultPageSize
	s.UnreadOnly = false
	s.BookmarkedOnly = false
	s.ItemCategoryIDs = nil
	s.ActiveNav = LevelCategories

	effects := []Effect{
		WriteLocation{CategoryID: &cat, FeedID: &fid},
		Focus{Anchor: FeedAnchor(feed.ID)},
		FetchList{Params: s.ListParams()},
	}
	return s, effects
}

// SelectItem activates an item row. An unread item is flipped to read
// optimistically by replacing the element, never by mutating the shared
// value, and the flip happens at most once per item. A new article body is
// fetched only when it differs from the one on display.
func SelectItem(s State, id int64) (State, []Effect) {
	idx := itemIndex(s.Items, id)
	if idx < 0 {
		return s, nil
	}

	s.ActiveNav = LevelItems
	s.SelectedItem = &id
	effects := []Effect{Focus{Anchor: ItemAnchor(id)}}

	if !s.Items[idx].IsRead() {
		items := make([]feedapi.Item, len(s.Items))
		copy(items, s.Items)
		items[idx].Read = feedapi.Read
		s.Items = items
		effects = append(effects, MarkRead{ID: id})
	}

	if s.Article == nil || s.Article.ID != id {
		s.ArticleLoading = true
		effects = append(effects, FetchItem{ID: id})
	}
	return s, effects
}

// ToggleExpansion is the chevron action without a selection change: the
// Left-key behavior at category level.
func ToggleExpansion(s State, id int64) (State, []Effect) {
	return toggleExpansion(s, id)
}

func toggleExpansion(s State, id int64) (State, []Effect) {
	if s.isExpanded(&id) {
		s.ExpandedCategory = nil
		return s, nil
	}
	// Setting the new id collapses any other expanded category.
	s.ExpandedCategory = &id
	var effects []Effect
	if _, ok := s.CategoryFeeds[id]; !ok {
		effects = append(effects, LoadCategoryFeeds{CategoryID: id})
	}
	effects = append(effects, RefreshFeedStats{})
	return s, effects
}

// ToggleUnreadFilter flips the unread-only filter and refetches the list.
// The selection survives; reconciliation keeps it visible.
func ToggleUnreadFilter(s State) (State, []Effect) {
	s.UnreadOnly = !s.UnreadOnly
	return s, []Effect{FetchList{Params: s.ListParams()}}
}

// MarkScopeAllRead marks every item of the active scope read, optimistically
// flips the working list, and returns focus to category level.
func MarkScopeAllRead(s State) (State, []Effect) {
	items := make([]feedapi.Item, len(s.Items))
	copy(items, s.Items)
	for i := range items {
		items[i].Read = feedapi.Read
	}
	s.Items = items
	s.ActiveNav = LevelCategories

	anchor := CategoryAnchor(s.SelectedCategory)
	if s.SelectedFeed != nil {
		anchor = FeedAnchor(*s.SelectedFeed)
	}
	return s, []Effect{
		MarkScopeRead{Scope: s.Scope()},
		Focus{Anchor: anchor},
	}
}

// ApplyItems commits a fetched list, reconciling it against the current
// selection so an active selection never vanishes under a filter.
func ApplyItems(s State, fetched []feedapi.Item) State {
	var selected *feedapi.Item
	if s.SelectedItem != nil {
		if idx := itemIndex(s.Items, *s.SelectedItem); idx >= 0 {
			it := s.Items[idx]
			selected = &it
		} else if s.Article != nil && s.Article.ID == *s.SelectedItem {
			it := *s.Article
			it.Content = ""
			selected = &it
		}
	}
	s.Items = Reconcile(fetched, selected, s.UnreadOnly)
	return s
}

// ApplyCategoryFeeds commits a lazily loaded feed list to the per-category
// cache. The cache is copy-on-write and never invalidated within a session.
func ApplyCategoryFeeds(s State, categoryID int64, feeds []feedapi.Feed) State {
	next := make(map[int64][]feedapi.Feed, len(s.CategoryFeeds)+1)
	for k, v := range s.CategoryFeeds {
		next[k] = v
	}
	next[categoryID] = feeds
	s.CategoryFeeds = next
	return s
}

// ApplyArticle commits a fetched article body. A stale body for a no longer
// selected item is dropped.
func ApplyArticle(s State, item feedapi.Item) State {
	if s.SelectedItem == nil || *s.SelectedItem != item.ID {
		return s
	}
	s.Article = &item
	s.ArticleLoading = false
	return s
}
