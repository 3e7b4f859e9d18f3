// Package scroll turns raw list-position updates into paging actions. A
// burst of position changes collapses into one decision for the final
// position, debounce style.
package scroll

import (
	"sync"
	"time"
)

const (
	DefaultDebounce = 200 * time.Millisecond

	// bottomThreshold is how many rows from the end still count as "at the
	// bottom" for triggering a load-more.
	bottomThreshold = 3
)

type Action int

const (
	ActionNone Action = iota
	ActionLoadMore
	ActionRefreshTop
)

// Position describes the visible window over the item list, in rows.
type Position struct {
	Offset   int
	Viewport int
	Content  int
}

// Classify decides which paging action a settled position calls for.
func Classify(p Position) Action {
	if p.Content <= 0 || p.Viewport <= 0 {
		return ActionNone
	}
	if p.Content > p.Viewport && p.Offset+p.Viewport >= p.Content-bottomThreshold {
		return ActionLoadMore
	}
	if p.Offset <= 0 {
		return ActionRefreshTop
	}
	return ActionNone
}

// Driver debounces position updates and fires the matching callback once
// the position settles. Returning to the top only refreshes after the list
// actually left the top, so mounting does not trigger a refresh.
type Driver struct {
	loadMore   func()
	refreshTop func()

	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	last     Position
	scrolled bool
	closed   bool
}

func New(loadMore, refreshTop func()) *Driver {
	return &Driver{
		loadMore:   loadMore,
		refreshTop: refreshTop,
		debounce:   DefaultDebounce,
	}
}

func (d *Driver) SetDebounce(dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debounce = dur
}

// Observe records a new position and reschedules the settle timer.
func (d *Driver) Observe(p Position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if p.Offset > 0 {
		d.scrolled = true
	}
	d.last = p
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.fire)
}

func (d *Driver) fire() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	action := Classify(d.last)
	if action == ActionRefreshTop && !d.scrolled {
		action = ActionNone
	}
	if action == ActionRefreshTop {
		d.scrolled = false
	}
	loadMore, refreshTop := d.loadMore, d.refreshTop
	d.mu.Unlock()

	switch action {
	case ActionLoadMore:
		if loadMore != nil {
			loadMore()
		}
	case ActionRefreshTop:
		if refreshTop != nil {
			refreshTop()
		}
	}
}

// Close stops the settle timer; no callback fires afterwards.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
