package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %s", cfg.APIBaseURL)
	}
	if cfg.StateDir == "" {
		t.Fatal("expected default state dir")
	}
	if cfg.Timeout() != 15*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Timeout())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PHOTOMART_API_URL", "https://photos.example.com/")
	t.Setenv("PHOTOMART_HTTP_TIMEOUT", "3s")
	t.Setenv("PHOTOMART_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://photos.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.Timeout() != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Timeout())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadRejectsBadURL(t *testing.T) {
	t.Setenv("PHOTOMART_API_URL", "not a url")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestTimeoutFallback(t *testing.T) {
	cfg := Config{HTTPTimeout: "bogus"}
	if cfg.Timeout() != 15*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.Timeout())
	}
}
