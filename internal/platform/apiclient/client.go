// Package apiclient performs all outbound calls to the clinical canvas
// backend. Every call returns a uniform Result envelope: ordinary network
// and HTTP failures are reported through the envelope, never as Go errors,
// so callers can treat any failure as recoverable.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the client's runtime settings. The client captures a copy at
// construction; UpdateConfig swaps it for subsequently issued requests only.
type Config struct {
	BaseURL               string
	Timeout               time.Duration
	RetryAttempts         int
	RetryDelay            time.Duration
	AuthToken             string
	LoggingEnabled        bool
	ErrorReportingEnabled bool
	ErrorReportURL        string
	CacheTTLPatient       time.Duration
	CacheTTLPatientList   time.Duration
	CacheTTLNotes         time.Duration
}

// RequestError describes a failed call. Status is zero for transport-level
// failures (no response, timeout, aborted).
type RequestError struct {
	Status     int       `json:"status,omitempty"`
	StatusText string    `json:"status_text,omitempty"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("request failed: %d %s: %s", e.Status, e.StatusText, e.Message)
	}
	return fmt.Sprintf("request failed: %s", e.Message)
}

// IsClientError reports whether the failure was a 4xx response, which is
// terminal for the call and never retried.
func (e *RequestError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// Result is the envelope returned by every client call.
type Result[T any] struct {
	Data    *T
	Success bool
	Error   *RequestError
}

func success[T any](data *T) Result[T] {
	return Result[T]{Data: data, Success: true}
}

func failure[T any](err *RequestError) Result[T] {
	return Result[T]{Error: err}
}

// Options configures a single request.
type Options struct {
	Method string        // defaults to GET
	Body   any           // JSON-encoded when non-nil
	Cache  CacheCategory // CacheNone disables caching for the call
}

// Client issues requests against the backend with bounded latency and
// bounded retries. It is safe for concurrent use.
type Client struct {
	mu       sync.RWMutex
	cfg      Config
	http     *http.Client
	logger   zerolog.Logger
	reporter *Reporter
	cache    *Cache

	// sleep is swapped in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

// New creates a Client from the given configuration. The error reporter is
// only constructed when reporting is enabled; it never affects control flow.
func New(cfg Config, logger zerolog.Logger) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger,
		cache: NewCache(CacheTTLs{
			Patient:     cfg.CacheTTLPatient,
			PatientList: cfg.CacheTTLPatientList,
			Notes:       cfg.CacheTTLNotes,
		}),
		sleep: time.Sleep,
	}
	if cfg.ErrorReportingEnabled && cfg.ErrorReportURL != "" {
		c.reporter = NewReporter(cfg.ErrorReportURL, logger)
	}
	return c
}

// UpdateConfig replaces the client's configuration. In-flight requests keep
// the configuration captured at dispatch time.
func (c *Client) UpdateConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	if cfg.ErrorReportingEnabled && cfg.ErrorReportURL != "" {
		c.reporter = NewReporter(cfg.ErrorReportURL, c.logger)
	} else {
		c.reporter = nil
	}
}

// Snapshot returns the configuration a request dispatched now would use.
func (c *Client) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

func (c *Client) currentReporter() *Reporter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reporter
}

// InvalidateCache drops any cached responses whose key contains the given
// fragment (typically a patient id after a mutating call).
func (c *Client) InvalidateCache(fragment string) {
	c.cache.Invalidate(fragment)
}

// Do issues a request for the given path (relative to the configured base
// URL) and decodes a 2xx JSON body into T. Transport errors and 5xx
// responses are retried up to the configured attempt limit with a backoff of
// RetryDelay * attempt; 4xx responses return immediately. A per-attempt
// timeout is enforced via context cancellation and counts as one failed
// attempt.
func Do[T any](ctx context.Context, c *Client, path string, opts Options) Result[T] {
	cfg := c.Snapshot()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	if method == http.MethodGet && opts.Cache != CacheNone {
		if cached, ok := c.cache.Get(opts.Cache, path); ok {
			var data T
			if err := json.Unmarshal(cached, &data); err == nil {
				c.logDebug(cfg, "cache hit", path, 0)
				return success(&data)
			}
			// Undecodable cache entries are dropped, not served.
			c.cache.Delete(opts.Cache, path)
		}
	}

	var bodyBytes []byte
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return failure[T](&RequestError{
				Message:   fmt.Sprintf("encode request body: %v", err),
				Timestamp: time.Now(),
			})
		}
		bodyBytes = b
	}

	url := joinURL(cfg.BaseURL, path)

	var lastErr *RequestError
	for attempt := 1; attempt <= cfg.RetryAttempts; attempt++ {
		raw, reqErr := c.attempt(ctx, cfg, method, url, bodyBytes)
		if reqErr == nil {
			var data T
			if err := json.Unmarshal(raw, &data); err != nil {
				return failure[T](c.fail(cfg, path, &RequestError{
					Message:   fmt.Sprintf("decode response body: %v", err),
					Timestamp: time.Now(),
				}))
			}
			if method == http.MethodGet && opts.Cache != CacheNone {
				c.cache.Set(opts.Cache, path, raw)
			}
			return success(&data)
		}

		lastErr = reqErr
		c.logDebug(cfg, reqErr.Message, path, attempt)

		if reqErr.IsClientError() {
			break
		}
		if attempt < cfg.RetryAttempts {
			c.sleep(cfg.RetryDelay * time.Duration(attempt))
		}
	}

	return failure[T](c.fail(cfg, path, lastErr))
}

// attempt performs one HTTP round trip with the per-attempt timeout applied.
func (c *Client) attempt(ctx context.Context, cfg Config, method, url string, body []byte) ([]byte, *RequestError) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Timestamp: time.Now()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.AuthToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and aborts land here; they count as a failed attempt.
		return nil, &RequestError{Message: err.Error(), Timestamp: time.Now()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Message:    fmt.Sprintf("read response body: %v", err),
			Timestamp:  time.Now(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Message:    fmt.Sprintf("non-2xx response: %d", resp.StatusCode),
			Timestamp:  time.Now(),
		}
	}

	return raw, nil
}

// HealthCheck issues a single GET to the health endpoint and reduces any
// failure to false. No retries, no envelope.
func (c *Client) HealthCheck(ctx context.Context) bool {
	cfg := c.Snapshot()
	_, reqErr := c.attempt(ctx, cfg, http.MethodGet, joinURL(cfg.BaseURL, "/health"), nil)
	return reqErr == nil
}

// fail emits the configured side channels for a terminal failure and returns
// the error unchanged.
func (c *Client) fail(cfg Config, path string, reqErr *RequestError) *RequestError {
	if reqErr == nil {
		reqErr = &RequestError{Message: "request failed", Timestamp: time.Now()}
	}
	if cfg.LoggingEnabled {
		c.logger.Warn().
			Str("path", path).
			Int("status", reqErr.Status).
			Str("message", reqErr.Message).
			Msg("request failed")
	}
	if r := c.currentReporter(); r != nil {
		r.Report(path, reqErr)
	}
	return reqErr
}

func (c *Client) logDebug(cfg Config, msg, path string, attempt int) {
	if !cfg.LoggingEnabled {
		return
	}
	evt := c.logger.Debug().Str("path", path)
	if attempt > 0 {
		evt = evt.Int("attempt", attempt)
	}
	evt.Msg(msg)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
