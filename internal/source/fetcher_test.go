package source

import (
	"net/http"
	"sync"
	"testing"

	"copymanga/internal/domain"

	"github.com/rs/zerolog"
)

type fakeResponse struct {
	body string
	err  error
}

// fakeFetcher answers by path and encoded query.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []*http.Request
}

func newFakeFetcher(responses map[string]fakeResponse) *fakeFetcher {
	return &fakeFetcher{responses: responses}
}

func (f *fakeFetcher) Fetch(req *http.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	resp, ok := f.responses[req.URL.Path+"?"+req.URL.RawQuery]
	if !ok {
		return nil, &domain.DecodeError{StatusCode: http.StatusNotFound}
	}

	if resp.err != nil {
		return nil, resp.err
	}

	return []byte(resp.body), nil
}

func (f *fakeFetcher) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.URL.Path+"?"+r.URL.RawQuery)
	}
	return out
}

func newTestSource(t *testing.T, f *fakeFetcher, opts Options) *Copymanga {
	t.Helper()

	c, err := NewCopymanga(f, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCopymanga: %v", err)
	}
	return c
}
