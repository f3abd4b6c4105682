// Package session owns the authenticated user's identity and bearer tokens,
// persisted across invocations and published to subscribers on every change.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/photomart/cli/internal/api"
	"github.com/photomart/cli/internal/models"
)

// ErrValidation indicates a client-side registration precondition failed; no
// network call was made.
var ErrValidation = errors.New("validation failed")

// AuthAPI captures the backend auth operations the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (models.User, models.SessionTokens, error)
	Register(ctx context.Context, input api.RegisterInput) (models.User, models.SessionTokens, error)
	Profile(ctx context.Context) (models.User, error)
}

// Snapshot is the immutable view of the session published to subscribers.
type Snapshot struct {
	User    *models.User
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool { return s.User != nil }

// Store is the single source of truth for "who is logged in". Token and user
// record updates are applied together under one lock so observers never see a
// half-updated session.
type Store struct {
	client AuthAPI
	tokens api.TokenStore
	// userPath caches the user record on disk so a fresh invocation right
	// after login can show identity without a profile fetch. Never a trust
	// boundary; the bearer token is what the backend validates.
	userPath string

	mu          sync.Mutex
	user        *models.User
	loading     bool
	nextSubID   int
	subscribers map[int]func(Snapshot)
}

// NewStore constructs a session store. userPath may be empty to disable the
// cached user record.
func NewStore(client AuthAPI, tokens api.TokenStore, userPath string) *Store {
	if client == nil {
		panic("session: auth client must not be nil")
	}
	if tokens == nil {
		panic("session: token store must not be nil")
	}
	return &Store{
		client:      client,
		tokens:      tokens,
		userPath:    userPath,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Subscribe registers a callback invoked with a snapshot after every session
// change. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Login exchanges credentials for a session. On success both tokens and the
// user record are stored before subscribers are notified.
func (s *Store) Login(ctx context.Context, username, password string) (models.User, error) {
	user, tokens, err := s.client.Login(ctx, username, password)
	if err != nil {
		return models.User{}, err
	}
	if err := s.establish(user, tokens); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Register validates the input locally, creates the account, and establishes
// the returned session exactly as Login does. Precondition violations fail
// fast with ErrValidation and no network call.
func (s *Store) Register(ctx context.Context, input api.RegisterInput) (models.User, error) {
	if err := validateRegistration(input); err != nil {
		return models.User{}, err
	}

	user, tokens, err := s.client.Register(ctx, input)
	if err != nil {
		return models.User{}, err
	}
	if err := s.establish(user, tokens); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Logout clears both tokens and the user record, in memory and on disk. It
// never calls the backend and is idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	_ = s.tokens.Clear()
	s.removeCachedUserLocked()
	s.user = nil
	snapshot := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Restore rehydrates the session at startup. While the profile call is in
// flight subscribers observe Loading=true. Any failure clears all session
// state rather than leaving it partially populated.
func (s *Store) Restore(ctx context.Context) Snapshot {
	tokens, err := s.tokens.Get()
	if err != nil || tokens.Access == "" {
		s.Logout()
		return s.Snapshot()
	}

	s.mu.Lock()
	s.loading = true
	snapshot := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, snapshot)

	user, err := s.client.Profile(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		_ = s.tokens.Clear()
		s.removeCachedUserLocked()
		s.user = nil
	} else {
		s.user = &user
		s.saveCachedUserLocked(user)
	}
	snapshot = s.snapshotLocked()
	subs = s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return snapshot
}

// Invalidate resets the session after the request client reports an
// unrecoverable 401. The client has already cleared the persisted tokens.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.removeCachedUserLocked()
	s.user = nil
	snapshot := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// CachedUser returns the denormalized user record persisted at login, if any.
func (s *Store) CachedUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userPath == "" {
		return models.User{}, false
	}
	data, err := os.ReadFile(s.userPath)
	if err != nil {
		return models.User{}, false
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return models.User{}, false
	}
	return user, true
}

func (s *Store) establish(user models.User, tokens models.SessionTokens) error {
	s.mu.Lock()
	if err := s.tokens.Set(tokens); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist tokens: %w", err)
	}
	s.saveCachedUserLocked(user)
	s.user = &user
	snapshot := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	snapshot := Snapshot{Loading: s.loading}
	if s.user != nil {
		user := *s.user
		snapshot.User = &user
	}
	return snapshot
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) saveCachedUserLocked(user models.User) {
	if s.userPath == "" {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.userPath, data, 0o600)
}

func (s *Store) removeCachedUserLocked() {
	if s.userPath == "" {
		return
	}
	_ = os.Remove(s.userPath)
}

func validateRegistration(input api.RegisterInput) error {
	if !models.ValidRole(input.Role) {
		return fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RoleUploader, models.RoleBuyer)
	}
	if input.Password != input.Password2 {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if len(input.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	return nil
}

func notify(subs []func(Snapshot), snapshot Snapshot) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
