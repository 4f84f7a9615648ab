// Package settings persists the handful of site settings editable at runtime.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

// KeyContactURL is the manager hand-off link shown after verification and in
// support chat.
const KeyContactURL = "contact_url"

const maxValueLen = 2048

// Errors returned by Set.
var (
	ErrUnknownKey   = errors.New("unknown setting")
	ErrInvalidValue = errors.New("invalid setting value")
)

// validators lists the known keys and how their values are checked.
var validators = map[string]func(string) error{
	KeyContactURL: validateURL,
}

// Store reads and writes settings. Values live in memory and, when the data
// directory is usable, on disk.
type Store struct {
	cache      *sfcache.TieredCache[string, string]
	defaults   map[string]string
	logger     *slog.Logger
	persistent bool
}

// Option configures a Store.
type Option func(*config)

type config struct {
	defaults map[string]string
	logger   *slog.Logger
}

// WithDefault sets the value returned for key when nothing has been stored.
func WithDefault(key, value string) Option {
	return func(c *config) { c.defaults[key] = value }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Open creates a Store persisted under dir. If dir can't be used the store
// keeps values in memory only; Open never fails.
func Open(dir string, opts ...Option) *Store {
	cfg := &config{defaults: map[string]string{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	s := &Store{defaults: cfg.defaults, logger: cfg.logger}

	tc, err := openDisk(dir)
	if err != nil {
		cfg.logger.Warn("settings not persisted, using memory only", "dir", dir, "error", err)
		tc, err = sfcache.NewTiered[string, string](null.New[string, string]())
		if err != nil {
			panic("sfcache.NewTiered with null store: " + err.Error())
		}
	} else {
		s.persistent = true
	}
	s.cache = tc
	return s
}

func openDisk(dir string) (*sfcache.TieredCache[string, string], error) {
	if dir == "" {
		return nil, errors.New("no data directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	persist, err := localfs.New[string, string]("chanscope-settings", dir)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}
	tc, err := sfcache.NewTiered[string, string](persist)
	if err != nil {
		return nil, fmt.Errorf("create settings cache: %w", err)
	}
	return tc, nil
}

// Persistent reports whether values survive a restart.
func (s *Store) Persistent() bool {
	return s.persistent
}

// Get returns the stored value for key, or its default.
func (s *Store) Get(ctx context.Context, key string) string {
	v, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "settings read failed, using default", "key", key, "error", err)
		return s.defaults[key]
	}
	if !found {
		return s.defaults[key]
	}
	return v
}

// Set validates and stores value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	validate, ok := validators[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)
	if err := validate(value); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	s.logger.InfoContext(ctx, "setting updated", "key", key, "persistent", s.persistent)
	return nil
}

// Close flushes and closes the underlying store.
func (s *Store) Close() error {
	return s.cache.Close()
}

func validateURL(v string) error {
	if v == "" || len(v) > maxValueLen {
		return fmt.Errorf("%w: length %d", ErrInvalidValue, len(v))
	}
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidValue, v)
	}
	return nil
}
