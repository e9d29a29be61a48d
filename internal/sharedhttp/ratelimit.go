package sharedhttp

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitTransport throttles requests to a single host and passes others through.
type RateLimitTransport struct {
	Base    http.RoundTripper
	Host    string
	limiter *rate.Limiter
}

func NewRateLimitTransport(base http.RoundTripper, host string, permits int, period time.Duration) *RateLimitTransport {
	t := &RateLimitTransport{
		Base: base,
		Host: host,
	}

	if permits > 0 && period > 0 {
		t.limiter = rate.NewLimiter(rate.Every(period/time.Duration(permits)), permits)
	}

	return t
}

func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil && (t.Host == "" || req.URL.Host == t.Host) {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	return t.Base.RoundTrip(req)
}
