package sharedhttp

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"copymanga/internal/domain"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
)

// StatusRateLimited is the success-range code the api uses to signal throttling.
const StatusRateLimited = 210

var Transport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ReadBufferSize:        65536,
	WriteBufferSize:       65536,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// Fetcher returns the raw body of a successful response or a classified error.
type Fetcher interface {
	Fetch(req *http.Request) ([]byte, error)
}

type Client struct {
	HTTP     *http.Client
	Attempts uint
	Delay    time.Duration
}

// NewClient builds a fetcher whose requests to host are limited to permits per period.
// A zero permits value disables the limiter.
func NewClient(host string, permits int, period time.Duration) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout:   60 * time.Second,
			Transport: NewRateLimitTransport(Transport, host, permits, period),
		},
		Attempts: 3,
		Delay:    time.Second * 3,
	}
}

// CheckStatusCode classifies a non rate limited response. Error bodies are
// decoded as an envelope first so the server message reaches the caller.
func CheckStatusCode(statusCode int, body []byte) error {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	var env struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		code := env.Code
		if code == 0 {
			code = statusCode
		}
		return domain.NewAPIError(code, env.Message)
	}

	return &domain.DecodeError{StatusCode: statusCode}
}

func (c *Client) Fetch(req *http.Request) ([]byte, error) {
	var body []byte
	var fetchErr error

	attempts := c.Attempts
	if attempts == 0 {
		attempts = 1
	}

	_ = retry.Do(func() error {
		body, fetchErr = c.fetchOnce(req)
		if fetchErr == nil {
			return nil
		}

		if req.Context().Err() != nil || !retryable(fetchErr) {
			return retry.Unrecoverable(fetchErr)
		}

		return fetchErr
	},
		retry.Delay(c.Delay),
		retry.Attempts(attempts),
		retry.MaxJitter(time.Second*1),
	)

	return body, fetchErr
}

func (c *Client) fetchOnce(req *http.Request) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// body is dropped unread
	if resp.StatusCode == StatusRateLimited {
		return nil, &domain.RateLimitedError{URL: req.URL.String()}
	}

	body, err := io.ReadAll(bufio.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if err := CheckStatusCode(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// retryable reports whether another attempt could succeed: transport
// failures and server side statuses.
func retryable(err error) bool {
	var rateLimited *domain.RateLimitedError
	if errors.As(err, &rateLimited) {
		return false
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}

	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.StatusCode >= http.StatusInternalServerError
	}

	return true
}
