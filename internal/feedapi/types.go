package feedapi

import "time"

// Read-state values as the backend encodes them.
const (
	Unread = 0
	Read   = 1
)

// Category is a user-defined grouping of feeds. The virtual "All" scope is
// not a wire object; selection code represents it by the absence of an ID.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}

type Feed struct {
	ID              int64  `json:"id"`
	FeedURL         string `json:"feedUrl"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	CategoryID      int64  `json:"feedCategoryId"`
	ItemsCount      int    `json:"itemsCount"`
	Error           string `json:"error,omitempty"`
	UpdateFrequency int    `json:"updateFrequency,omitempty"`

	// Hidden is a client-side search-filter flag, never sent to the server.
	Hidden bool `json:"-"`
}

// Item is one article. Read and Bookmarked are 0|1 on the wire.
type Item struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	FeedID     int64     `json:"feedId"`
	FeedTitle  string    `json:"feedTitle"`
	CategoryID int64     `json:"feedCategoryId"`
	Published  time.Time `json:"published"`
	Read       int       `json:"read"`
	Bookmarked int       `json:"bookmarked"`
	Content    string    `json:"content,omitempty"`
	Comments   string    `json:"comments,omitempty"`
}

func (it Item) IsRead() bool       { return it.Read == Read }
func (it Item) IsBookmarked() bool { return it.Bookmarked == 1 }

// ReadStat is a per-feed or per-category unread counter.
type ReadStat struct {
	ID          int64 `json:"id"`
	UnreadCount int   `json:"unreadCount"`
}

// Import job states reported by the OPML import endpoint.
const (
	ImportRunning   = "running"
	ImportSucceeded = "succeeded"
	ImportFailed    = "failed"
)

type ImportJob struct {
	ID             string `json:"jobId"`
	Status         string `json:"status"`
	ProcessedFeeds int    `json:"processedFeeds"`
	TotalFeeds     int    `json:"totalFeeds"`
	Error          string `json:"error,omitempty"`
}

func (j ImportJob) Terminal() bool {
	return j.Status == ImportSucceeded || j.Status == ImportFailed
}
