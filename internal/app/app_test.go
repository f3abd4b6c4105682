package app

import (
	"context"
	"testing"

	"github.com/photomart/cli/internal/config"
)

func TestRunRequiresCommand(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Setenv("PHOTOMART_STATE_DIR", t.TempDir())
	if err := Run(context.Background(), []string{"frobnicate"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestPhotoIDArg(t *testing.T) {
	if _, err := photoIDArg(nil); err == nil {
		t.Fatal("expected error without args")
	}
	if _, err := photoIDArg([]string{"abc"}); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := photoIDArg([]string{"-2"}); err == nil {
		t.Fatal("expected error for non-positive id")
	}
	id, err := photoIDArg([]string{"42"})
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
}

func TestStringOr(t *testing.T) {
	value := "hello"
	empty := ""
	if got := stringOr(&value, "-"); got != "hello" {
		t.Fatalf("unexpected value: %s", got)
	}
	if got := stringOr(&empty, "-"); got != "-" {
		t.Fatalf("expected fallback for empty string, got %s", got)
	}
	if got := stringOr(nil, "-"); got != "-" {
		t.Fatalf("expected fallback for nil, got %s", got)
	}
}

func TestBuildDependencies(t *testing.T) {
	t.Setenv("PHOTOMART_STATE_DIR", t.TempDir())

	deps, err := buildDependencies(mustConfig(t))
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	if deps.client == nil || deps.store == nil || deps.tokens == nil {
		t.Fatal("expected all dependencies wired")
	}
	if deps.client.OnSessionExpired == nil {
		t.Fatal("expected session expiry hook wired")
	}
	if deps.client.BaseURL != deps.cfg.APIBaseURL+"/api" {
		t.Fatalf("unexpected base url: %s", deps.client.BaseURL)
	}
}

func mustConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}
