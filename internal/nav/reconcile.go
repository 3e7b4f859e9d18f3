package nav

import "feeddeck/internal/feedapi"

// Reconcile guarantees the selected item stays in the displayed list even
// when the unread-only filter would exclude it: a background refresh must
// never pull the reading pane's subject out from under the user. The item
// is inserted before the first element strictly older than it, keeping the
// published-descending order, or appended when no such element exists.
func Reconcile(fetched []feedapi.Item, selected *feedapi.Item, unreadOnly bool) []feedapi.Item {
	if !unreadOnly || selected == nil {
		return fetched
	}
	if itemIndex(fetched, selected.ID) >= 0 {
		return fetched
	}

	out := make([]feedapi.Item, 0, len(fetched)+1)
	inserted := false
	for _, it := range fetched {
		if !inserted && it.Published.Before(selected.Published) {
			out = append(out, *selected)
			inserted = true
		}
		out = append(out, it)
	}
	if !inserted {
		out = append(out, *selected)
	}
	return out
}
