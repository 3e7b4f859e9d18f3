package feedapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListItemsParams narrows the item query. Nil pointer fields are omitted
// from the query string; an absent cid/fid means the All scope.
type ListItemsParams struct {
	Size            int
	Unread          bool
	Bookmarked      bool
	CategoryID      *int64
	FeedID          *int64
	ItemCategoryIDs []int64
}

func (p ListItemsParams) query() url.Values {
	q := make(url.Values)
	setJSONParam(q, "size", p.Size)
	if p.Unread {
		setJSONParam(q, "unread", true)
	}
	if p.Bookmarked {
		setJSONParam(q, "bookmarked", true)
	}
	if p.CategoryID != nil {
		setJSONParam(q, "cid", *p.CategoryID)
	}
	if p.FeedID != nil {
		setJSONParam(q, "fid", *p.FeedID)
	}
	if len(p.ItemCategoryIDs) > 0 {
		setJSONParam(q, "icids", p.ItemCategoryIDs)
	}
	return q
}

// setJSONParam JSON-stringifies the value before placing it in the query,
// the encoding the backend expects for numeric and array parameters.
func setJSONParam(q url.Values, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	q.Set(key, string(raw))
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/categories", nil, &categories, "list categories"); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CategoryReadStats(ctx context.Context) ([]ReadStat, error) {
	var stats []ReadStat
	if err := c.getJSON(ctx, "/categories/readstats", nil, &stats, "category read stats"); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListFeeds lists feeds, optionally narrowed to a category or a single feed.
func (c *Client) ListFeeds(ctx context.Context, categoryID, feedID *int64) ([]Feed, error) {
	q := make(url.Values)
	if categoryID != nil {
		setJSONParam(q, "cid", *categoryID)
	}
	if feedID != nil {
		setJSONParam(q, "fid", *feedID)
	}
	var feeds []Feed
	if err := c.getJSON(ctx, "/feeds", q, &feeds, "list feeds"); err != nil {
		return nil, err
	}
	return feeds, nil
}

func (c *Client) FeedReadStats(ctx context.Context) ([]ReadStat, error) {
	var stats []ReadStat
	if err := c.getJSON(ctx, "/feeds/readstats", nil, &stats, "feed read stats"); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListItems returns items ordered by published descending.
func (c *Client) ListItems(ctx context.Context, params ListItemsParams) ([]Item, error) {
	var items []Item
	if err := c.getJSON(ctx, "/items", params.query(), &items, "list items"); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem fetches a single item including its content body.
func (c *Client) GetItem(ctx context.Context, id int64) (Item, error) {
	var item Item
	if err := c.getJSON(ctx, fmt.Sprintf("/items/%d", id), nil, &item, "get item"); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (c *Client) MarkItemRead(ctx context.Context, id int64) error {
	q := make(url.Values)
	setJSONParam(q, "id", id)
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.getJSON(ctx, "/item/read", q, &resp, "mark item read"); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("mark item %d read was not acknowledged", id)
	}
	return nil
}

func (c *Client) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	q := make(url.Values)
	setJSONParam(q, "id", id)
	var resp struct {
		Bookmarked bool `json:"bookmarked"`
	}
	if err := c.getJSON(ctx, "/item/bookmark", q, &resp, "toggle bookmark"); err != nil {
		return false, err
	}
	return resp.Bookmarked, nil
}

// MarkScope narrows a bulk mark-read call. At most one field is set; all nil
// means the whole All scope.
type MarkScope struct {
	FeedID         *int64
	CategoryID     *int64
	ItemCategoryID *int64
}

func (c *Client) MarkManyRead(ctx context.Context, scope MarkScope) error {
	q := make(url.Values)
	if scope.FeedID != nil {
		setJSONParam(q, "fid", *scope.FeedID)
	}
	if scope.CategoryID != nil {
		setJSONParam(q, "cid", *scope.CategoryID)
	}
	if scope.ItemCategoryID != nil {
		setJSONParam(q, "icid", *scope.ItemCategoryID)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.getJSON(ctx, "/itemsread", q, &resp, "mark many read"); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("mark many read was not acknowledged")
	}
	return nil
}

// ImportRequest carries an OPML payload or a remote URL, plus an optional
// target category for the imported feeds.
type ImportRequest struct {
	OPML           []byte `json:"opml,omitempty"`
	URL            string `json:"url,omitempty"`
	TargetCategory *int64 `json:"targetCategory,omitempty"`
}

// StartImport starts an OPML import job. Legacy backends answer with a bare
// {success} instead of a job id; that is mapped to an already-terminal job.
func (c *Client) StartImport(ctx context.Context, req ImportRequest) (ImportJob, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ImportJob{}, fmt.Errorf("encode import request: %w", err)
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/opml-import", bytes.NewReader(body))
	if err != nil {
		return ImportJob{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ImportJob{}, fmt.Errorf("start import request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return ImportJob{}, statusError("start import", resp)
	}

	var payload struct {
		JobID   string `json:"jobId"`
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ImportJob{}, fmt.Errorf("decode start import response: %w", err)
	}
	if payload.JobID != "" {
		return ImportJob{ID: payload.JobID, Status: ImportRunning}, nil
	}
	if payload.Success != nil {
		if *payload.Success {
			return ImportJob{Status: ImportSucceeded}, nil
		}
		return ImportJob{Status: ImportFailed, Error: payload.Error}, nil
	}
	return ImportJob{}, fmt.Errorf("start import response carries neither jobId nor success")
}

func (c *Client) ImportStatus(ctx context.Context, jobID string) (ImportJob, error) {
	var job ImportJob
	if err := c.getJSON(ctx, "/opml-import/"+url.PathEscape(jobID), nil, &job, "import status"); err != nil {
		return ImportJob{}, err
	}
	if job.ID == "" {
		job.ID = jobID
	}
	return job, nil
}

// ExportOPML streams the subscription list as OPML.
func (c *Client) ExportOPML(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/opml-export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export opml request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("export opml", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read opml export: %w", err)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any, resource string) error {
	if len(q) > 0 {
		path = path + "?" + q.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resource, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

func statusError(resource string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s failed with status %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(body)))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
