// Package api implements the authenticated HTTP client for the PhotoMart
// backend. Every call injects the stored access token and transparently
// recovers from token expiry with a single refresh-and-retry cycle.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/photomart/cli/internal/logging"
	"github.com/photomart/cli/internal/models"
)

const maxResponseBody = 4 << 20

// TokenStore persists the bearer credentials between invocations. The client
// never assumes a concrete persistence mechanism; tests use an in-memory fake.
type TokenStore interface {
	Get() (models.SessionTokens, error)
	Set(tokens models.SessionTokens) error
	Clear() error
}

// requestState tracks retry progress for one logical call. A request moves
// from stateInitial to stateRetried at most once.
type requestState int

const (
	stateInitial requestState = iota
	stateRetried
)

// request describes one logical outbound call. The descriptor is immutable;
// the body is held as bytes so a retry replays exactly the same payload.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// bare requests skip bearer injection and refresh recovery. The token
	// refresh call itself must be bare or a 401 would recurse.
	bare bool
}

// Client is the authenticated request path to the backend.
type Client struct {
	// BaseURL is the API root including the /api prefix.
	BaseURL string
	// HTTPClient performs the actual transport. Its timeout bounds every call.
	HTTPClient *http.Client
	// Tokens supplies and persists the bearer credentials.
	Tokens TokenStore
	// OnSessionExpired is invoked after an unrecoverable 401 clears the
	// persisted tokens, so the owner can reset any dependent state.
	OnSessionExpired func()

	refresh singleflight.Group
}

// NewClient constructs a client for the provided API root.
func NewClient(baseURL string, tokens TokenStore) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Tokens:     tokens,
	}
}

// do executes the request, recovering from a single 401 by refreshing the
// access token and replaying the call once. Token rotation and the retry form
// one recovery attempt: callers only ever observe the final outcome.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c.Tokens == nil {
		return errors.New("api: token store must not be nil")
	}

	state := stateInitial
	for {
		resp, err := c.send(ctx, r)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		if resp.StatusCode == http.StatusUnauthorized && !r.bare && state == stateInitial {
			drain(resp)
			state = stateRetried
			if err := c.refreshAccess(ctx); err != nil {
				return err
			}
			continue
		}

		return c.finish(resp, out)
	}
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	target := c.BaseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, err
	}

	// Structured-data default; multipart bodies carry their own type.
	contentType := r.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	if !r.bare {
		tokens, err := c.Tokens.Get()
		if err != nil {
			return nil, fmt.Errorf("read tokens: %w", err)
		}
		if tokens.Access != "" {
			req.Header.Set("Authorization", "Bearer "+tokens.Access)
		}
	}

	logging.FromContext(ctx).Debug("outbound request",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.String("requestId", requestID),
	)

	return c.httpClient().Do(req)
}

// refreshAccess exchanges the persisted refresh token for a new access token.
// Concurrent callers share a single in-flight refresh so a burst of 401s
// issues exactly one backend call.
func (c *Client) refreshAccess(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (any, error) {
		tokens, err := c.Tokens.Get()
		if err != nil {
			return nil, fmt.Errorf("read tokens: %w", err)
		}
		if tokens.Refresh == "" {
			c.expireSession()
			return nil, fmt.Errorf("%w: no refresh token", ErrSessionExpired)
		}

		body, err := json.Marshal(map[string]string{"refresh": tokens.Refresh})
		if err != nil {
			return nil, err
		}

		var payload struct {
			Access string `json:"access"`
		}
		r := request{method: http.MethodPost, path: "/auth/token/refresh/", body: body, bare: true}
		if err := c.do(ctx, r, &payload); err != nil {
			c.expireSession()
			return nil, fmt.Errorf("%w: refresh rejected", ErrSessionExpired)
		}

		tokens.Access = payload.Access
		if err := c.Tokens.Set(tokens); err != nil {
			return nil, fmt.Errorf("store rotated token: %w", err)
		}
		return nil, nil
	})
	return err
}

// expireSession clears the persisted credentials and informs the owner. The
// CLI analogue of redirecting the user to the sign-in page.
func (c *Client) expireSession() {
	_ = c.Tokens.Clear()
	if c.OnSessionExpired != nil {
		c.OnSessionExpired()
	}
}

func (c *Client) finish(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return newStatusError(resp.StatusCode, data)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	_ = resp.Body.Close()
}
