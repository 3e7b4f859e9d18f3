// Package urlstate maps the current selection to the addressable location
// string `category=<id>&feed=<id>` and back. An absent parameter means the
// All scope.
package urlstate

import (
	"net/url"
	"strconv"
	"sync"

	"feeddeck/internal/feedapi"
)

type Selection struct {
	CategoryID *int64
	FeedID     *int64
}

func Encode(sel Selection) string {
	q := make(url.Values)
	if sel.CategoryID != nil {
		q.Set("category", strconv.FormatInt(*sel.CategoryID, 10))
	}
	if sel.FeedID != nil {
		q.Set("feed", strconv.FormatInt(*sel.FeedID, 10))
	}
	return q.Encode()
}

// Decode parses a location string. Malformed values are treated as absent.
func Decode(raw string) Selection {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return Selection{}
	}
	var sel Selection
	if v := q.Get("category"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			sel.CategoryID = &id
		}
	}
	if v := q.Get("feed"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			sel.FeedID = &id
		}
	}
	return sel
}

// Writer persists location strings, suppressing writes that would not
// change the current location.
type Writer struct {
	mu      sync.Mutex
	current string
	save    func(string) error
}

func NewWriter(initial string, save func(string) error) *Writer {
	return &Writer{current: initial, save: save}
}

// Write persists the selection's location. It reports whether a write
// actually happened; an identical location is a no-op.
func (w *Writer) Write(sel Selection) (bool, error) {
	encoded := Encode(sel)

	w.mu.Lock()
	if encoded == w.current {
		w.mu.Unlock()
		return false, nil
	}
	w.current = encoded
	save := w.save
	w.mu.Unlock()

	if save == nil {
		return true, nil
	}
	if err := save(encoded); err != nil {
		return true, err
	}
	return true, nil
}

func (w *Writer) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Seeder restores the selection from a stored location exactly once. It
// waits for the data needed for resolution and never fires again, so the
// app's own writes cannot loop back into navigation.
type Seeder struct {
	raw  string
	done bool
}

func NewSeeder(raw string) *Seeder {
	return &Seeder{raw: raw}
}

// Seed resolves the stored location against the loaded category and feed
// lists. It returns the selection and true exactly once, and keeps waiting
// (returning false) while data required for resolution is still missing.
// IDs that resolve to nothing are dropped silently, leaving the All scope.
func (s *Seeder) Seed(categories []feedapi.Category, feeds []feedapi.Feed) (Selection, bool) {
	if s.done {
		return Selection{}, false
	}

	want := Decode(s.raw)
	if want.CategoryID != nil && categories == nil {
		return Selection{}, false
	}
	if want.FeedID != nil && feeds == nil {
		return Selection{}, false
	}
	s.done = true

	var sel Selection
	if want.FeedID != nil {
		for _, f := range feeds {
			if f.ID == *want.FeedID {
				fid := f.ID
				cid := f.CategoryID
				sel.FeedID = &fid
				sel.CategoryID = &cid
				return sel, true
			}
		}
	}
	if want.CategoryID != nil {
		for _, c := range categories {
			if c.ID == *want.CategoryID {
				cid := c.ID
				sel.CategoryID = &cid
				break
			}
		}
	}
	return sel, true
}

// Done reports whether the one-time seed already happened.
func (s *Seeder) Done() bool { return s.done }
