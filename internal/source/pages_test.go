package source

import (
	"context"
	"errors"
	"testing"

	"copymanga/internal/domain"
)

const chapterPath = "/api/v3/comic/haizeiwang/chapter2/0a3f8c1e-0000-4000-8000-000000000001?platform=4"

func contentBody(contents, words string) string {
	return `{"code":200,"message":"","results":{"chapter":{"uuid":"0a3f8c1e-0000-4000-8000-000000000001","name":"第1话",
		"contents":` + contents + `,"words":` + words + `,"is_long":false}}}`
}

func TestCopymanga_ListPages_SortsByWords(t *testing.T) {
	f := newFakeFetcher(map[string]fakeResponse{
		chapterPath: {body: contentBody(`[{"url":"https://img/a.png"},{"url":"https://img/b.png"},{"url":"https://img/c.png"}]`, `[2,0,1]`)},
	})
	c := newTestSource(t, f, Options{})

	pages, err := c.ListPages(context.Background(), "/api/v3/comic/haizeiwang/chapter2/0a3f8c1e-0000-4000-8000-000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Page{
		{Index: 0, ImageURL: "https://img/b.png"},
		{Index: 1, ImageURL: "https://img/c.png"},
		{Index: 2, ImageURL: "https://img/a.png"},
	}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(pages))
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d = %+v, want %+v", i, pages[i], want[i])
		}
	}
}

func TestMapPages_Ordering(t *testing.T) {
	contents := `[{"url":"A"},{"url":"B"},{"url":"C"}]`

	tests := []struct {
		name  string
		words string
		want  []string
	}{
		{name: "length mismatch keeps response order", words: `[1,0]`, want: []string{"A", "B", "C"}},
		{name: "empty words keeps response order", words: `[]`, want: []string{"A", "B", "C"}},
		{name: "ties keep relative order", words: `[1,0,1]`, want: []string{"B", "A", "C"}},
		{name: "already sorted", words: `[0,1,2]`, want: []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := decode[chapterContent]([]byte(contentBody(contents, tt.words)))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			pages, err := mapPages(env, Options{})
			if err != nil {
				t.Fatalf("mapPages: %v", err)
			}

			for i, url := range tt.want {
				if pages[i].ImageURL != url || pages[i].Index != i {
					t.Fatalf("page %d = %+v, want %s", i, pages[i], url)
				}
			}
		})
	}
}

func TestMapPages_MissingContents(t *testing.T) {
	env, err := decode[chapterContent]([]byte(`{"code":200,"message":"","results":{"chapter":{"uuid":"x"}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	_, err = mapPages(env, Options{})

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestMapPages_EmptyContents(t *testing.T) {
	env, err := decode[chapterContent]([]byte(contentBody(`[]`, `[]`)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	pages, err := mapPages(env, Options{})
	if err != nil || len(pages) != 0 {
		t.Fatalf("expected no pages, got %v %v", pages, err)
	}
}

func TestRewriteImageURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "https://hi77.mangafuna.xyz/m/cover.c800x.jpg", want: "https://hi77.mangafuna.xyz/m/cover.c1500x.webp"},
		{in: "https://hi77.mangafuna.xyz/m/p.c1500x.jpg", want: "https://hi77.mangafuna.xyz/m/p.c1500x.webp"},
		{in: "https://hi77.mangafuna.xyz/m/p.c800x.webp", want: "https://hi77.mangafuna.xyz/m/p.c800x.webp"},
		{in: "https://hi77.mangafuna.xyz/m/p.c800x.jpg?t=1", want: "https://hi77.mangafuna.xyz/m/p.c800x.jpg?t=1"},
		{in: "https://hi77.mangafuna.xyz/m/p.jpg", want: "https://hi77.mangafuna.xyz/m/p.jpg"},
	}

	for _, tt := range tests {
		if got := rewriteImageURL(tt.in); got != tt.want {
			t.Errorf("rewriteImageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptions_ImageURL_Upscale(t *testing.T) {
	raw := "https://img/cover.c800x.jpg"

	on := Options{UpscaleEnabled: true, UpscaleURLTemplate: "https://proxy/x?url={url}"}
	if got, want := on.imageURL(raw), "https://proxy/x?url=https://img/cover.c1500x.webp"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	off := Options{UpscaleEnabled: false, UpscaleURLTemplate: "https://proxy/x?url={url}"}
	if got, want := off.imageURL(raw), "https://img/cover.c1500x.webp"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCopymanga_UpdateUpscale(t *testing.T) {
	c := newTestSource(t, newFakeFetcher(nil), Options{UpscaleEnabled: true, UpscaleURLTemplate: "https://proxy/x?url={url}"})

	for _, bad := range []string{"", "   ", "https://proxy/x"} {
		if err := c.UpdateUpscale(false, bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}

	opts := c.Options()
	if !opts.UpscaleEnabled || opts.UpscaleURLTemplate != "https://proxy/x?url={url}" {
		t.Fatalf("previous settings must be kept, got %+v", opts)
	}

	if err := c.UpdateUpscale(true, "https://other/{url}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Options().UpscaleURLTemplate; got != "https://other/{url}" {
		t.Fatalf("template not updated: %q", got)
	}
}

func TestNewCopymanga_Template(t *testing.T) {
	c := newTestSource(t, newFakeFetcher(nil), Options{})
	if got := c.Options().UpscaleURLTemplate; got != DefaultUpscaleURLTemplate {
		t.Fatalf("expected default template, got %q", got)
	}

	if _, err := NewCopymanga(newFakeFetcher(nil), Options{UpscaleURLTemplate: "https://proxy/"}, c.log); err == nil {
		t.Fatalf("expected template without placeholder to be rejected")
	}
}

func TestParseChapterKey(t *testing.T) {
	comicPath, id, err := ParseChapterKey(ChapterKey("haizeiwang", "abc"))
	if err != nil || comicPath != "/api/v3/comic/haizeiwang" || id != "abc" {
		t.Fatalf("got %q %q %v", comicPath, id, err)
	}

	keys := []string{
		"",
		"/api/v3/comic/x",
		"/chapter2/abc",
		"/api/v3/comic/x/chapter2/",
		"a/chapter2/b/chapter2/c",
		"/evil/path/chapter2/abc",
		"https://other.host/api/v3/comic/x/chapter2/abc",
		"/api/v3/comic//chapter2/abc",
		"/api/v3/comic/x/y/chapter2/abc",
		"/api/v3/comic/x/chapter2/abc/def",
	}
	for _, bad := range keys {
		if _, _, err := ParseChapterKey(bad); err == nil {
			t.Errorf("ParseChapterKey(%q) expected error", bad)
		}
	}
}

func TestCopymanga_ListPages_ForeignKeyIsRejected(t *testing.T) {
	f := newFakeFetcher(nil)
	c := newTestSource(t, f, Options{})

	if _, err := c.ListPages(context.Background(), "/api/v3/other/x/chapter2/abc"); err == nil {
		t.Fatalf("expected error for a key outside the comic path")
	}
	if len(f.paths()) != 0 {
		t.Fatalf("expected no requests, got %v", f.paths())
	}
}
