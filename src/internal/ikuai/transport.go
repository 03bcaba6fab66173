package ikuai

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

const (
	loginPath  = "/Action/login"
	actionPath = "/Action/call"

	defaultConcurrency    = 3
	defaultRequestTimeout = 10 * time.Second
	maxBodySize           = 8 << 20
	userAgent             = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// HTTPClient interface for dependency injection in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns an http.Client suitable for talking to a router.
// Routers commonly serve self-signed certificates, hence insecureSkipVerify.
func NewHTTPClient(insecureSkipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = defaultConcurrency
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{Transport: transport}
}

// TransportStats are cumulative counters since the transport was created.
type TransportStats struct {
	Requests int64 `json:"requests"`
	Failures int64 `json:"failures"`
}

// Transport issues POST requests to the router. Every request, whether part of a
// polling cycle or a user action, passes through one shared concurrency gate.
type Transport struct {
	httpClient HTTPClient
	baseURL    string
	gate       *semaphore.Weighted
	timeout    time.Duration

	requests atomic.Int64
	failures atomic.Int64
}

type TransportOption func(*Transport)

// WithConcurrency sets the number of requests allowed in flight at once.
func WithConcurrency(n int) TransportOption {
	return func(t *Transport) {
		if n > 0 {
			t.gate = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRequestTimeout bounds each individual request.
func WithRequestTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTransport creates a transport for the router at baseURL (e.g. "http://192.168.1.1").
// If httpClient is nil, NewHTTPClient(false) is used.
func NewTransport(baseURL string, httpClient HTTPClient, opts ...TransportOption) *Transport {
	if httpClient == nil {
		httpClient = NewHTTPClient(false)
	}
	t := &Transport{
		httpClient: httpClient,
		baseURL:    baseURL,
		gate:       semaphore.NewWeighted(defaultConcurrency),
		timeout:    defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Stats returns request counters.
func (t *Transport) Stats() TransportStats {
	return TransportStats{
		Requests: t.requests.Load(),
		Failures: t.failures.Load(),
	}
}

// rawResponse is an HTTP reply with its body already decoded to UTF-8.
type rawResponse struct {
	Status  int
	Body    []byte
	Cookies []*http.Cookie
}

// post sends payload as JSON to path. Only transport-level problems are returned
// as errors; HTTP status interpretation is left to the caller.
func (t *Transport) post(ctx context.Context, path, cookie string, payload any) (*rawResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode request", err)
	}

	if err := t.gate.Acquire(ctx, 1); err != nil {
		return nil, errors.NewNetworkError(fmt.Sprintf("request %s not started", path), err)
	}
	defer t.gate.Release(1)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("User-Agent", userAgent)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	t.requests.Add(1)
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.failures.Add(1)
		log.Debugf("Router request %s failed: %v", path, err)
		return nil, errors.NewNetworkError(fmt.Sprintf("request %s failed", path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		t.failures.Add(1)
		return nil, errors.NewNetworkError(fmt.Sprintf("failed to read %s response", path), err)
	}

	return &rawResponse{
		Status:  resp.StatusCode,
		Body:    decodeBody(raw),
		Cookies: resp.Cookies(),
	}, nil
}

// sessionCookie builds the cookie header the router expects on authenticated calls.
func sessionCookie(username, key string) string {
	return fmt.Sprintf("username=%s; login=1; sess_key=%s", username, key)
}
