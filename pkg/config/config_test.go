package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var allKeys = []string{
	"CHANSCOPE_ADDR", "CHANSCOPE_DATA_DIR", "CHANSCOPE_ADMIN_TOKEN", "CHANSCOPE_DEFAULT_CONTACT",
	"CHANSCOPE_ALLOWED_ORIGINS", "CHANSCOPE_FETCH_TIMEOUT", "CHANSCOPE_SUBMIT_RPS",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_API_URL",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("FetchTimeout = %v", cfg.FetchTimeout)
	}
	if diff := cmp.Diff([]string{"*"}, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.TelegramAPIURL != "https://api.telegram.org" {
		t.Errorf("TelegramAPIURL = %q", cfg.TelegramAPIURL)
	}
	if cfg.DataDir == "" {
		t.Error("DataDir is empty")
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHANSCOPE_ADDR", "127.0.0.1:9000")
	t.Setenv("CHANSCOPE_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("CHANSCOPE_FETCH_TIMEOUT", "3s")
	t.Setenv("CHANSCOPE_SUBMIT_RPS", "1.5")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.FetchTimeout != 3*time.Second || cfg.SubmitRPS != 1.5 || cfg.TelegramToken != "tok" {
		t.Errorf("cfg = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHANSCOPE_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "CHANSCOPE_ADDR=:6000\nTELEGRAM_CHAT_ID=12345\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("Addr = %q, want environment to win over .env", cfg.Addr)
	}
	if cfg.TelegramChatID != "12345" {
		t.Errorf("TelegramChatID = %q, want value from .env", cfg.TelegramChatID)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CHANSCOPE_FETCH_TIMEOUT", "soon"},
		{"CHANSCOPE_FETCH_TIMEOUT", "-1s"},
		{"CHANSCOPE_SUBMIT_RPS", "fast"},
		{"CHANSCOPE_SUBMIT_RPS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q: error = nil", tt.key, tt.value)
			}
		})
	}
}
