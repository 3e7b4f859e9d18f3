package nav

// Command is a semantic keyboard command. The TUI layer maps physical keys
// (arrows plus W/A/S/D and H/J/K/L) onto these.
type Command int

const (
	CmdUp Command = iota
	CmdDown
	CmdLeft
	CmdRight
	CmdOpen
	CmdMarkScopeRead
	CmdToggleUnread
)

// HandleCommand advances the state machine one keyboard step. Moves past
// either end of a list are silent no-ops.
func HandleCommand(s State, cmd Command) (State, []Effect) {
	switch cmd {
	case CmdUp:
		if s.ActiveNav == LevelItems {
			return moveItemCursor(s, -1)
		}
		return moveCategoryUp(s)
	case CmdDown:
		if s.ActiveNav == LevelItems {
			return moveItemCursor(s, +1)
		}
		return moveCategoryDown(s)
	case CmdLeft:
		return moveOut(s)
	case CmdRight:
		return moveIn(s)
	case CmdOpen:
		return openCurrent(s)
	case CmdMarkScopeRead:
		return MarkScopeAllRead(s)
	case CmdToggleUnread:
		return ToggleUnreadFilter(s)
	}
	return s, nil
}

// moveItemCursor walks the flat displayed item list by index.
func moveItemCursor(s State, delta int) (State, []Effect) {
	if len(s.Items) == 0 {
		return s, nil
	}
	if s.SelectedItem == nil {
		return SelectItem(s, s.Items[0].ID)
	}
	idx := itemIndex(s.Items, *s.SelectedItem)
	if idx < 0 {
		return SelectItem(s, s.Items[0].ID)
	}
	next := idx + delta
	if next < 0 || next >= len(s.Items) {
		return s, nil
	}
	return SelectItem(s, s.Items[next].ID)
}

// moveCategoryUp walks one step backwards on the category rail: previous
// feed when a feed inside the expanded category is selected, then the
// category itself, then the previous rail entry — descending into its last
// feed when that entry is expanded.
func moveCategoryUp(s State) (State, []Effect) {
	if s.SelectedFeed != nil {
		if s.isExpanded(s.SelectedCategory) {
			feeds := s.CategoryFeeds[*s.SelectedCategory]
			if i := feedIndex(feeds, *s.SelectedFeed); i > 0 {
				return SelectFeed(s, feeds[i-1])
			}
		}
		return SelectCategory(s, s.SelectedCategory, false)
	}

	rail := s.rail()
	cur := s.railIndex(s.SelectedCategory)
	if cur <= 0 {
		return s, nil
	}
	prev := rail[cur-1]
	if s.isExpanded(prev) {
		if feeds := s.CategoryFeeds[*prev]; len(feeds) > 0 {
			return SelectFeed(s, feeds[len(feeds)-1])
		}
	}
	return SelectCategory(s, prev, false)
}

func moveCategoryDown(s State) (State, []Effect) {
	if s.SelectedFeed != nil {
		if s.isExpanded(s.SelectedCategory) {
			feeds := s.CategoryFeeds[*s.SelectedCategory]
			if i := feedIndex(feeds, *s.SelectedFeed); i >= 0 && i < len(feeds)-1 {
				return SelectFeed(s, feeds[i+1])
			}
		}
		return selectNextCategory(s)
	}

	if s.isExpanded(s.SelectedCategory) {
		if feeds := s.CategoryFeeds[*s.SelectedCategory]; len(feeds) > 0 {
			return SelectFeed(s, feeds[0])
		}
	}
	return selectNextCategory(s)
}

func selectNextCategory(s State) (State, []Effect) {
	rail := s.rail()
	cur := s.railIndex(s.SelectedCategory)
	if cur < 0 || cur >= len(rail)-1 {
		return s, nil
	}
	return SelectCategory(s, rail[cur+1], false)
}

// moveOut leaves item level for category level; at category level it
// toggles expansion of the selected category instead.
func moveOut(s State) (State, []Effect) {
	if s.ActiveNav == LevelItems {
		s.ActiveNav = LevelCategories
		anchor := CategoryAnchor(s.SelectedCategory)
		if s.SelectedFeed != nil {
			anchor = FeedAnchor(*s.SelectedFeed)
		}
		return s, []Effect{Focus{Anchor: anchor}}
	}
	if s.SelectedCategory == nil {
		return s, nil
	}
	return ToggleExpansion(s, *s.SelectedCategory)
}

// moveIn enters item level, only when the list is non-empty: the displayed
// article's row when it is still listed, otherwise the first item.
func moveIn(s State) (State, []Effect) {
	if s.ActiveNav != LevelCategories || len(s.Items) == 0 {
		return s, nil
	}
	target := s.Items[0].ID
	if s.Article != nil && itemIndex(s.Items, s.Article.ID) >= 0 {
		target = s.Article.ID
	}
	return SelectItem(s, target)
}

func openCurrent(s State) (State, []Effect) {
	if s.Article != nil && s.Article.URL != "" {
		return s, []Effect{OpenURL{URL: s.Article.URL}}
	}
	if s.SelectedItem != nil {
		if idx := itemIndex(s.Items, *s.SelectedItem); idx >= 0 && s.Items[idx].URL != "" {
			return s, []Effect{OpenURL{URL: s.Items[idx].URL}}
		}
	}
	return s, nil
}
