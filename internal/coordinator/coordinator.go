// Package coordinator serializes list and item fetches: a burst of calls of
// the same kind collapses into one network request carrying the last call's
// parameters, and every older pending call is rejected with ErrSuperseded.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"feeddeck/internal/feedapi"
)

var (
	// ErrSuperseded rejects a pending call when a newer call of the same
	// kind arrives. Callers treat it as non-fatal and swallow it.
	ErrSuperseded = errors.New("request superseded")

	// ErrAlreadyRequested rejects a repeated item fetch for the id that was
	// requested last, preventing redundant article reloads.
	ErrAlreadyRequested = errors.New("item already requested")
)

const (
	DefaultDebounce = 350 * time.Millisecond

	requestTimeout = 10 * time.Second
)

type Fetcher interface {
	ListItems(ctx context.Context, params feedapi.ListItemsParams) ([]feedapi.Item, error)
	GetItem(ctx context.Context, id int64) (feedapi.Item, error)
}

type ListResult struct {
	Items  []feedapi.Item
	Params feedapi.ListItemsParams
	Err    error
}

type ItemResult struct {
	Item feedapi.Item
	Err  error
}

type Coordinator struct {
	fetcher  Fetcher
	debounce time.Duration

	mu     sync.Mutex
	closed bool

	listGen    uint64
	listTimer  *time.Timer
	listCancel context.CancelFunc
	listCh     chan ListResult

	itemGen     uint64
	itemTimer   *time.Timer
	itemCancel  context.CancelFunc
	itemCh      chan ItemResult
	lastItemID  int64
	hasLastItem bool
}

func New(fetcher Fetcher) *Coordinator {
	return &Coordinator{fetcher: fetcher, debounce: DefaultDebounce}
}

// SetDebounce overrides the quiet period (useful for testing).
func (c *Coordinator) SetDebounce(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debounce = d
}

// FetchList schedules a debounced item-list fetch. Any pending list call is
// rejected with ErrSuperseded first. The returned channel delivers exactly
// one result and is buffered, so the caller may abandon it.
func (c *Coordinator) FetchList(params feedapi.ListItemsParams) <-chan ListResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan ListResult, 1)
	if c.closed {
		ch <- ListResult{Params: params, Err: ErrSuperseded}
		return ch
	}

	c.supersedeListLocked()
	c.listGen++
	gen := c.listGen
	c.listCh = ch
	c.listTimer = time.AfterFunc(c.debounce, func() {
		c.dispatchList(gen, params, ch)
	})
	return ch
}

// FetchItem schedules a debounced single-item fetch. A call repeating the
// previously requested id short-circuits with ErrAlreadyRequested.
func (c *Coordinator) FetchItem(id int64) <-chan ItemResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan ItemResult, 1)
	if c.closed {
		ch <- ItemResult{Err: ErrSuperseded}
		return ch
	}
	if c.hasLastItem && c.lastItemID == id {
		ch <- ItemResult{Err: ErrAlreadyRequested}
		return ch
	}

	c.supersedeItemLocked()
	c.itemGen++
	gen := c.itemGen
	c.lastItemID = id
	c.hasLastItem = true
	c.itemCh = ch
	c.itemTimer = time.AfterFunc(c.debounce, func() {
		c.dispatchItem(gen, id, ch)
	})
	return ch
}

// Close stops timers, cancels any in-flight request and rejects pending
// calls. Further calls reject immediately.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.supersedeListLocked()
	c.supersedeItemLocked()
}

func (c *Coordinator) supersedeListLocked() {
	if c.listTimer != nil {
		c.listTimer.Stop()
		c.listTimer = nil
	}
	if c.listCancel != nil {
		c.listCancel()
		c.listCancel = nil
	}
	if c.listCh != nil {
		c.listCh <- ListResult{Err: ErrSuperseded}
		c.listCh = nil
	}
}

func (c *Coordinator) supersedeItemLocked() {
	if c.itemTimer != nil {
		c.itemTimer.Stop()
		c.itemTimer = nil
	}
	if c.itemCancel != nil {
		c.itemCancel()
		c.itemCancel = nil
	}
	if c.itemCh != nil {
		c.itemCh <- ItemResult{Err: ErrSuperseded}
		c.itemCh = nil
	}
}

func (c *Coordinator) dispatchList(gen uint64, params feedapi.ListItemsParams, ch chan ListResult) {
	c.mu.Lock()
	if gen != c.listGen || c.closed {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	c.listCancel = cancel
	c.listTimer = nil
	c.mu.Unlock()

	items, err := c.fetcher.ListItems(ctx, params)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	// The generation token guards against a superseded-but-dispatched
	// request resolving after a newer one was issued: its result is dropped
	// here, never committed.
	if gen != c.listGen {
		return
	}
	c.listCancel = nil
	c.listCh = nil
	ch <- ListResult{Items: items, Params: params, Err: err}
}

func (c *Coordinator) dispatchItem(gen uint64, id int64, ch chan ItemResult) {
	c.mu.Lock()
	if gen != c.itemGen || c.closed {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	c.itemCancel = cancel
	c.itemTimer = nil
	c.mu.Unlock()

	item, err := c.fetcher.GetItem(ctx, id)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.itemGen {
		return
	}
	c.itemCancel = nil
	c.itemCh = nil
	if err != nil {
		// A failed fetch releases the duplicate guard so the same item can
		// be requested again.
		c.hasLastItem = false
	}
	ch <- ItemResult{Item: item, Err: err}
}
