// Package fetch retrieves public profile pages with a browser-like request.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/chanscope/pkg/profile"
)

// UserAgent is the desktop browser User-Agent sent with every page request.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

const (
	acceptLanguage = "en-US,en;q=0.9"
	accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// DefaultTimeout bounds a whole request including the body read.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBytes caps how much of a document is read.
	DefaultMaxBytes = 8 << 20
)

// HTTPError represents a non-success HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Is reports every non-success status as profile.ErrProfileNotFound.
func (*HTTPError) Is(target error) bool {
	return target == profile.ErrProfileNotFound
}

// Fetcher issues page requests. It holds no per-request state and is safe for
// concurrent use.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	maxBytes   int64
}

// Option configures a Fetcher.
type Option func(*config)

type config struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	maxBytes   int64
}

// WithHTTPClient sets the underlying HTTP client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) { cfg.httpClient = c }
}

// WithTimeout sets the request timeout for the default client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) { cfg.timeout = d }
}

// WithMaxBytes sets the document size cap.
func WithMaxBytes(n int64) Option {
	return func(cfg *config) { cfg.maxBytes = n }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	cfg := &config{
		logger:   slog.Default(),
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	client := cfg.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}

	return &Fetcher{
		httpClient: client,
		logger:     cfg.logger,
		maxBytes:   cfg.maxBytes,
	}
}

// EnsureScheme returns rawURL with an explicit scheme, defaulting to https.
func EnsureScheme(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return s
	case strings.HasPrefix(s, "//"):
		return "https:" + s
	default:
		return "https://" + s
	}
}

// Fetch returns the body of the page at rawURL.
//
// A non-2xx response yields an *HTTPError matching profile.ErrProfileNotFound.
// Any other failure wraps profile.ErrFetchFailed. Nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target := EnsureScheme(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %w", profile.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.WarnContext(ctx, "page fetch failed", "url", target, "error", err)
		return "", fmt.Errorf("%w: %w", profile.ErrFetchFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // intentional

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.InfoContext(ctx, "page not available", "url", target, "status", resp.StatusCode)
		return "", &HTTPError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", profile.ErrFetchFailed, err)
	}

	f.logger.DebugContext(ctx, "page fetched",
		"url", target, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return string(body), nil
}
