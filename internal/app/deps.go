package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/photomart/cli/internal/api"
	"github.com/photomart/cli/internal/config"
	"github.com/photomart/cli/internal/session"
)

// dependencies groups the long-lived objects commands operate on.
type dependencies struct {
	cfg    config.Config
	tokens api.TokenStore
	client *api.Client
	store  *session.Store
}

// buildDependencies wires the token store, request client, and session store
// in leaf-first order.
func buildDependencies(cfg config.Config) (*dependencies, error) {
	tokens, err := session.NewFileTokenStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	client := api.NewClient(cfg.APIBaseURL+"/api", tokens)
	client.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout(),
		Transport: api.NewThrottledTransport(nil, cfg.RequestsPerSecond, cfg.RequestBurst),
	}

	store := session.NewStore(client, tokens, filepath.Join(cfg.StateDir, "user.json"))
	client.OnSessionExpired = func() {
		store.Invalidate()
		fmt.Fprintln(os.Stderr, "Session expired. Run `photomart login` to sign in again.")
	}

	return &dependencies{cfg: cfg, tokens: tokens, client: client, store: store}, nil
}
