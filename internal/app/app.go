// Package app wires the PhotoMart CLI together and dispatches subcommands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/photomart/cli/internal/config"
	"github.com/photomart/cli/internal/logging"
)

// Run bootstraps the PhotoMart CLI and executes the requested command.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: login, register, logout, whoami, photos, or gallery")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	deps, err := buildDependencies(cfg)
	if err != nil {
		return err
	}

	ctx = logging.WithLogger(ctx, logger)

	switch args[0] {
	case "login":
		return runLogin(ctx, deps, args[1:])
	case "register":
		return runRegister(ctx, deps, args[1:])
	case "logout":
		return runLogout(deps)
	case "whoami":
		return runWhoami(ctx, deps)
	case "photos":
		return runPhotos(ctx, deps, args[1:])
	case "gallery":
		return runGallery(ctx, deps, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
