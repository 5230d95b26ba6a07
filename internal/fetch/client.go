// Package fetch downloads remote playlists for stream source synchronisation.
// It wraps the standard http.Client with retries, exponential backoff and
// transparent response decompression, and keeps provider credentials out of
// log output.
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

var (
	// ErrAttemptsExhausted is returned when every retry attempt failed.
	ErrAttemptsExhausted = errors.New("all fetch attempts failed")
	// ErrBadStatus is returned for non-retryable error statuses.
	ErrBadStatus = errors.New("unexpected response status")
)

const (
	defaultTimeout    = 60 * time.Second
	defaultAttempts   = 3
	defaultBackoff    = time.Second
	defaultMaxBackoff = 30 * time.Second
	defaultUserAgent  = "m3u-filter/1.0"
)

// Config controls retry and timeout behaviour of a Client.
type Config struct {
	// Timeout bounds a single request, connect through body read.
	Timeout time.Duration
	// Attempts is the total number of tries per URL, including the first.
	Attempts int
	// Backoff is the delay before the second attempt; it doubles per
	// attempt up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	UserAgent  string
	Logger     *slog.Logger

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// Client fetches playlist documents over HTTP.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a fetch client, filling unset config fields with defaults.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.MaxBackoff < cfg.Backoff {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc, logger: cfg.Logger}
}

// Fetch retrieves rawURL and returns the response body, decompressed when
// the server applied gzip, deflate or brotli encoding. The caller must close
// the returned reader. Statuses 429, 502, 503 and 504 are retried with
// backoff; other error statuses fail immediately.
func (c *Client) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var lastErr error
	delay := c.cfg.Backoff

	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying fetch",
				slog.String("url", SafeURL(rawURL)),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.cfg.MaxBackoff {
				delay = c.cfg.MaxBackoff
			}
		}

		body, err := c.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var transient retryable
		if !errors.As(err, &transient) {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("fetch attempt failed",
			slog.String("url", SafeURL(rawURL)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}
	return nil, fmt.Errorf("%w: %v", ErrAttemptsExhausted, lastErr)
}

// retryable wraps transient failures so Fetch retries them.
type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

func (c *Client) fetchOnce(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, retryable{err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case isTransientStatus(resp.StatusCode):
		resp.Body.Close()
		return nil, retryable{fmt.Errorf("status %d", resp.StatusCode)}
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	c.logger.Debug("fetch completed",
		slog.String("url", SafeURL(rawURL)),
		slog.Duration("duration", time.Since(start)),
		slog.Int64("content_length", resp.ContentLength))

	return decompressed(resp)
}

func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// decompressed wraps the response body according to Content-Encoding.
// net/http only handles gzip transparently when it set the header itself.
func decompressed(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "", "identity":
		return resp.Body, nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("gzip response: %w", err)
		}
		return &bodyReader{r: zr, body: resp.Body}, nil
	case "deflate":
		return &bodyReader{r: flate.NewReader(resp.Body), body: resp.Body}, nil
	case "br":
		return &bodyReader{r: brotli.NewReader(resp.Body), body: resp.Body}, nil
	default:
		return resp.Body, nil
	}
}

// bodyReader closes both the decoder and the underlying response body.
type bodyReader struct {
	r    io.Reader
	body io.Closer
}

func (b *bodyReader) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *bodyReader) Close() error {
	if c, ok := b.r.(io.Closer); ok {
		c.Close()
	}
	return b.body.Close()
}

// SafeURL strips credentials from a URL before it reaches logs. Provider
// playlist URLs routinely embed usernames, passwords and API tokens.
func SafeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	q := u.Query()
	for _, key := range []string{"username", "password", "token", "api_key", "apikey", "secret"} {
		if q.Has(key) {
			q.Set(key, "***")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
