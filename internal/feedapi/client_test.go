package feedapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListItems_EncodesParamsAsJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("size") != "50" {
			t.Fatalf("unexpected size param: %s", r.URL.RawQuery)
		}
		if q.Get("cid") != "5" {
			t.Fatalf("unexpected cid param: %s", r.URL.RawQuery)
		}
		if q.Get("unread") != "true" {
			t.Fatalf("unexpected unread param: %s", r.URL.RawQuery)
		}
		if q.Get("icids") != "[1,2,3]" {
			t.Fatalf("unexpected icids param: %s", r.URL.RawQuery)
		}
		if q.Has("fid") {
			t.Fatalf("fid must be absent: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"First","url":"https://example.com/1","feedId":10,"feedTitle":"Example","feedCategoryId":5,"published":"2026-02-01T00:00:00Z","read":0,"bookmarked":1}]`))
	}))
	defer ts.Close()

	cid := int64(5)
	c := NewClient(ts.URL, ts.Client())
	items, err := c.ListItems(context.Background(), ListItemsParams{
		Size:            50,
		Unread:          true,
		CategoryID:      &cid,
		ItemCategoryIDs: []int64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].IsRead() {
		t.Fatal("expected item to be unread")
	}
	if !items[0].IsBookmarked() {
		t.Fatal("expected item to be bookmarked")
	}
}

func TestGetItem_ParsesContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/42" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"title":"Full","url":"https://example.com/42","feedId":10,"feedCategoryId":5,"published":"2026-02-01T00:00:00Z","read":1,"content":"<p>Body</p>"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	item, err := c.GetItem(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetItem returned error: %v", err)
	}
	if item.Content != "<p>Body</p>" {
		t.Fatalf("unexpected content: %q", item.Content)
	}
}

func TestMarkItemRead(t *testing.T) {
	var gotID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item/read" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotID = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	if err := c.MarkItemRead(context.Background(), 7); err != nil {
		t.Fatalf("MarkItemRead returned error: %v", err)
	}
	if gotID != "7" {
		t.Fatalf("unexpected id param: %s", gotID)
	}
}

func TestMarkManyRead_ScopeParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/itemsread" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("fid") != "12" {
			t.Fatalf("unexpected fid param: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Has("cid") {
			t.Fatalf("cid must be absent: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	fid := int64(12)
	c := NewClient(ts.URL, ts.Client())
	if err := c.MarkManyRead(context.Background(), MarkScope{FeedID: &fid}); err != nil {
		t.Fatalf("MarkManyRead returned error: %v", err)
	}
}

func TestReadStats_ParseResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/feeds/readstats":
			_, _ = w.Write([]byte(`[{"id":10,"unreadCount":3},{"id":11,"unreadCount":0}]`))
		case "/categories/readstats":
			_, _ = w.Write([]byte(`[{"id":5,"unreadCount":3}]`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	feedStats, err := c.FeedReadStats(context.Background())
	if err != nil {
		t.Fatalf("FeedReadStats returned error: %v", err)
	}
	if len(feedStats) != 2 || feedStats[0].UnreadCount != 3 {
		t.Fatalf("unexpected feed stats: %+v", feedStats)
	}

	catStats, err := c.CategoryReadStats(context.Background())
	if err != nil {
		t.Fatalf("CategoryReadStats returned error: %v", err)
	}
	if len(catStats) != 1 || catStats[0].ID != 5 {
		t.Fatalf("unexpected category stats: %+v", catStats)
	}
}

func TestListItems_ServerErrorIncludesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	_, err := c.ListItems(context.Background(), ListItemsParams{Size: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 500") || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStartImport_JobBased(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/opml-import" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode import request: %v", err)
		}
		if req.TargetCategory == nil || *req.TargetCategory != 5 {
			t.Fatalf("unexpected target category: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"job-1"}`))
	}))
	defer ts.Close()

	cid := int64(5)
	c := NewClient(ts.URL, ts.Client())
	job, err := c.StartImport(context.Background(), ImportRequest{OPML: []byte("<opml/>"), TargetCategory: &cid})
	if err != nil {
		t.Fatalf("StartImport returned error: %v", err)
	}
	if job.ID != "job-1" || job.Status != ImportRunning {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestStartImport_LegacySuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	job, err := c.StartImport(context.Background(), ImportRequest{OPML: []byte("<opml/>")})
	if err != nil {
		t.Fatalf("StartImport returned error: %v", err)
	}
	if !job.Terminal() || job.Status != ImportSucceeded {
		t.Fatalf("expected terminal succeeded job, got %+v", job)
	}
}

func TestExportOPML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/opml-export" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("<opml version=\"2.0\"/>"))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	data, err := c.ExportOPML(context.Background())
	if err != nil {
		t.Fatalf("ExportOPML returned error: %v", err)
	}
	if !strings.Contains(string(data), "opml") {
		t.Fatalf("unexpected export payload: %s", data)
	}
}
