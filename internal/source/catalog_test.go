package source

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"copymanga/internal/domain"
)

const popularBody = `{
  "code": 200,
  "message": "请求成功",
  "results": {
    "list": [
      {"type": 1, "comic": {"name": "海贼王", "path_word": "haizeiwang", "cover": "https://hi77-overseas.mangafuna.xyz/haizeiwang/cover/1.jpg.328x422.jpg",
        "author": [{"name": "尾田荣一郎"}], "theme": [{"name": "冒险"}, {"name": "热血"}], "popular": 100, "img_type": 2}},
      {"type": 1, "comic": {"name": "双人作", "path_word": "shuangren", "cover": "c2",
        "author": [{"name": "A"}, {"name": "B"}, {"name": "A"}], "theme": [], "popular": 5, "img_type": 2}}
    ],
    "total": 100,
    "limit": 30,
    "offset": 30
  }
}`

func TestCopymanga_ListPopular(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/recs?limit=30&offset=30&pos=3200102": {body: popularBody},
	})
	c := newTestSource(t, f, Options{})

	page, err := c.ListPopular(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !page.HasNextPage {
		t.Fatalf("expected another page")
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}

	first := page.Items[0]
	if first.Title != "海贼王" || first.Key != "/api/v3/comic2/haizeiwang" {
		t.Fatalf("unexpected item %+v", first)
	}
	if first.Genre() != "冒险, 热血" || first.Author() != "尾田荣一郎" {
		t.Fatalf("unexpected display fields %q %q", first.Genre(), first.Author())
	}
	if got := page.Items[1].Author(); got != "A, B, A" {
		t.Fatalf("duplicates must be kept, got %q", got)
	}
}

func TestCopymanga_RequestHeaders(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/recs?limit=30&offset=0&pos=3200102": {body: popularBody},
	})
	c := newTestSource(t, f, Options{})

	if _, err := c.ListPopular(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := f.requests[0].Header
	want := map[string]string{
		"User-Agent": "COPY/2.2.5",
		"Accept":     "application/json",
		"source":     "copyApp",
		"platform":   "4",
		"webp":       "1",
		"Referer":    "com.copymanga.app-2.2.5",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
	if f.requests[0].URL.Host != CopymangaHost {
		t.Errorf("unexpected host %q", f.requests[0].URL.Host)
	}
}

func TestHasNextPage(t *testing.T) {
	tests := []struct {
		total, limit, offset int
		want                 bool
	}{
		{total: 30, limit: 30, offset: 0, want: false},
		{total: 31, limit: 30, offset: 0, want: true},
		{total: 60, limit: 30, offset: 30, want: false},
		{total: 0, limit: 30, offset: 0, want: false},
		{total: 100, limit: 30, offset: 60, want: true},
	}

	for _, tt := range tests {
		p := pagination[comicSummary]{Total: tt.total, Limit: tt.limit, Offset: tt.offset}
		if got := p.hasNextPage(); got != tt.want {
			t.Errorf("total=%d limit=%d offset=%d: got %v, want %v", tt.total, tt.limit, tt.offset, got, tt.want)
		}
	}
}

func TestCopymanga_ListPopular_NullResults(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/recs?limit=30&offset=0&pos=3200102": {body: `{"code":200,"message":"","results":null}`},
	})
	c := newTestSource(t, f, Options{})

	page, err := c.ListPopular(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.HasNextPage || len(page.Items) != 0 {
		t.Fatalf("expected empty last page, got %+v", page)
	}
}

func TestCopymanga_ListLatest(t *testing.T) {
	body := `{"code":200,"message":"","results":{"list":[
		{"name":"第100话","datetime_created":"2024-05-01","comic":{"name":"新作","path_word":"xinzuo","cover":"c","author":[{"name":"X"}],"theme":[{"name":"日常"}]}}
	],"total":1,"limit":30,"offset":0}}`

	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/update/newest?limit=30&offset=0": {body: body},
	})
	c := newTestSource(t, f, Options{})

	page, err := c.ListLatest(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.HasNextPage || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Key != "/api/v3/comic2/xinzuo" || page.Items[0].Genre() != "日常" {
		t.Fatalf("unexpected item %+v", page.Items[0])
	}
}

func TestCopymanga_ListLatest_Failure(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/update/newest?limit=30&offset=0": {body: `{"code":500,"message":"服务器错误"}`},
	})
	c := newTestSource(t, f, Options{})

	_, err := c.ListLatest(context.Background(), 1)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "服务器错误" {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestCopymanga_Search(t *testing.T) {
	params := url.Values{"limit": {"30"}, "offset": {"0"}, "q": {"海贼 王"}, "platform": {"4"}}
	body := `{"code":200,"message":"","results":{"list":[
		{"name":"海贼王","path_word":"haizeiwang","cover":"c","author":[{"name":"尾田荣一郎"}]}
	],"total":1,"limit":30,"offset":0}}`

	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/search/comic?" + params.Encode(): {body: body},
	})
	c := newTestSource(t, f, Options{})

	page, err := c.Search(context.Background(), " 海贼 王 ", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Key != "/api/v3/comic2/haizeiwang" {
		t.Fatalf("unexpected page %+v", page)
	}
	if len(page.Items[0].Genres) != 0 {
		t.Fatalf("expected no genres, got %v", page.Items[0].Genres)
	}
}

func TestCopymanga_Search_NullResults(t *testing.T) {
	params := url.Values{"limit": {"30"}, "offset": {"0"}, "q": {"x"}, "platform": {"4"}}
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/search/comic?" + params.Encode(): {body: `{"code":200,"message":"","results":null}`},
	})
	c := newTestSource(t, f, Options{})

	_, err := c.Search(context.Background(), "x", 1)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "未知错误" {
		t.Fatalf("expected default message, got %q", apiErr.Message)
	}
}

func TestCopymanga_Search_BlankQueryBrowsesPopular(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/recs?limit=30&offset=0&pos=3200102": {body: popularBody},
	})
	c := newTestSource(t, f, Options{})

	page, err := c.Search(context.Background(), "   ", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected popular items, got %+v", page)
	}
}

func TestCopymanga_InvalidPage(t *testing.T) {
	c := newTestSource(t, newFakeFetcher(nil), Options{})

	if _, err := c.ListLatest(context.Background(), 0); err == nil {
		t.Fatalf("expected error for page 0")
	}
}

func TestCopymanga_MalformedBody(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		"/api/v3/recs?limit=30&offset=0&pos=3200102": {body: `{"code":200,"results":`},
	})
	c := newTestSource(t, f, Options{})

	_, err := c.ListPopular(context.Background(), 1)

	var decodeErr *domain.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
