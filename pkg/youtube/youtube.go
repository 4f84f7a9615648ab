// Package youtube fetches YouTube channel pages and extracts display metadata.
package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeGROOVE-dev/chanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/chanscope/pkg/profile"
)

// PageFetcher retrieves the raw body of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Client handles YouTube requests.
type Client struct {
	fetcher PageFetcher
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	fetcher PageFetcher
	logger  *slog.Logger
}

// WithFetcher sets the page fetcher.
func WithFetcher(f PageFetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates a YouTube client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.fetcher == nil {
		cfg.fetcher = fetch.New(fetch.WithLogger(cfg.logger))
	}

	return &Client{
		fetcher: cfg.fetcher,
		logger:  cfg.logger,
	}, nil
}

// Fetch retrieves a channel page and extracts its profile.
// The extractor only runs once the page has been fetched successfully.
func (c *Client) Fetch(ctx context.Context, urlStr string) (*profile.Profile, error) {
	target := fetch.EnsureScheme(urlStr)
	c.logger.InfoContext(ctx, "fetching youtube profile", "url", target)

	body, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	prof, err := Extract(body)
	if err != nil {
		c.logger.WarnContext(ctx, "no channel metadata in page", "url", target, "bytes", len(body))
		return nil, fmt.Errorf("extract %s: %w", target, err)
	}
	prof.URL = target

	c.logger.DebugContext(ctx, "extracted youtube profile",
		"url", target, "name", prof.DisplayName, "verification", prof.Verification)
	return prof, nil
}
