package integrations

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/topdeps/pkg/cache"
	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/httputil"
	"github.com/matzehuels/topdeps/pkg/observability"
)

// errTooManyRequests marks a 429 response inside the retry loop.
var errTooManyRequests = errors.New("too many requests")

// Client fetches pages over HTTP with retry and an optional response cache.
// It is safe for concurrent use.
type Client struct {
	http         *http.Client
	cache        cache.Cache
	headers      map[string]string
	logger       *log.Logger
	timer        backoff.Timer
	initialDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger used for retry and cache warnings.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// WithTimer sets the timer that drives backoff waits. Tests use it to
// observe delays without sleeping.
func WithTimer(t backoff.Timer) Option { return func(c *Client) { c.timer = t } }

// WithInitialDelay overrides the first backoff delay.
func WithInitialDelay(d time.Duration) Option { return func(c *Client) { c.initialDelay = d } }

// NewClient creates a Client backed by the given cache. A nil cache disables
// caching. headers are added to every request on top of the browser
// User-Agent and may override it.
func NewClient(c cache.Cache, headers map[string]string, opts ...Option) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	h := map[string]string{"User-Agent": BrowserUserAgent}
	for k, v := range headers {
		h[k] = v
	}
	client := &Client{
		http:         NewHTTPClient(),
		cache:        c,
		headers:      h,
		initialDelay: httputil.DefaultInitialDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.logger == nil {
		client.logger = log.Default()
	}
	return client
}

// Cache returns the cache the client reads and writes.
func (c *Client) Cache() cache.Cache { return c.cache }

// FetchWithRetry GETs url and returns the body of a 2xx response.
//
// 429 responses and transport failures share one budget of maxRetries
// retries, waiting 1s, 2s, 4s, ... between attempts. When the budget runs
// out on a 429 the result is a [errs.RateLimitedError]; on a transport
// failure it is that failure, coded NETWORK_ERROR. Any other status is
// returned immediately as a [errs.HTTPStatusError].
func (c *Client) FetchWithRetry(ctx context.Context, url string, maxRetries int) (string, error) {
	host, path := hostPath(url)
	var body string

	retries, err := httputil.Retry(ctx, httputil.Policy{
		MaxRetries:   maxRetries,
		InitialDelay: c.initialDelay,
		Timer:        c.timer,
		Notify: func(err error, retry int, delay time.Duration) {
			c.logger.Warn("retrying request", "url", url, "retry", retry, "delay", delay, "err", err)
			observability.HTTP().OnRetry(ctx, host, retry, delay)
		},
	}, func() error {
		b, err := c.get(ctx, url, host, path)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	switch {
	case err == nil:
		return body, nil
	case errors.Is(err, errTooManyRequests):
		return "", &errs.RateLimitedError{Retries: retries, URL: url}
	default:
		return "", err
	}
}

// CachedFetch returns the cached body for url while the entry is fresh and
// otherwise fetches it with the default retry budget and stores the result.
// Cache read and write failures are logged and never fail the call.
func (c *Client) CachedFetch(ctx context.Context, url string) (string, error) {
	host, _ := hostPath(url)
	path := c.cache.PathFor(url)

	if c.cache.IsValid(path) {
		content, err := c.cache.Read(path)
		if err == nil {
			c.logger.Debug("cache hit", "url", url)
			observability.Cache().OnCacheHit(ctx, host)
			return content, nil
		}
		c.logger.Warn("failed to read cache", "path", path, "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, host)

	body, err := c.FetchWithRetry(ctx, url, httputil.DefaultMaxRetries)
	if err != nil {
		return "", err
	}

	if path != "" {
		if err := c.cache.Write(path, body); err != nil {
			c.logger.Warn("failed to write cache", "path", path, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, host, len(body))
		}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url, host, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return "", httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "GET %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, url); err != nil {
		io.Copy(io.Discard, resp.Body)
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return "", httputil.Retryable(errs.Wrap(errs.ErrCodeNetwork, err, "read body of %s", url))
	}
	return string(data), nil
}

func checkStatus(code int, url string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(errTooManyRequests)
	default:
		return &errs.HTTPStatusError{StatusCode: code, URL: url}
	}
}
