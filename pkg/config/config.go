// Package config loads chanscope settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/chanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/chanscope/pkg/notify"
)

// Config holds process-wide settings.
type Config struct {
	Addr           string
	DataDir        string
	AdminToken     string
	DefaultContact string
	AllowedOrigins []string
	FetchTimeout   time.Duration
	SubmitRPS      float64

	TelegramToken  string
	TelegramChatID string
	TelegramAPIURL string
}

// Load reads the environment, first applying any variables from the given
// .env files. Missing files are ignored; variables already set win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	timeout, err := durationEnv("CHANSCOPE_FETCH_TIMEOUT", fetch.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	rps, err := floatEnv("CHANSCOPE_SUBMIT_RPS", 0.2)
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:           getEnv("CHANSCOPE_ADDR", ":8080"),
		DataDir:        getEnv("CHANSCOPE_DATA_DIR", defaultDataDir()),
		AdminToken:     os.Getenv("CHANSCOPE_ADMIN_TOKEN"),
		DefaultContact: getEnv("CHANSCOPE_DEFAULT_CONTACT", "https://t.me/"),
		AllowedOrigins: splitList(getEnv("CHANSCOPE_ALLOWED_ORIGINS", "*")),
		FetchTimeout:   timeout,
		SubmitRPS:      rps,
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramAPIURL: getEnv("TELEGRAM_API_URL", notify.DefaultAPIURL),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chanscope")
}
