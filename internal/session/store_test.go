package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/photomart/cli/internal/api"
	"github.com/photomart/cli/internal/models"
)

type authAPIStub struct {
	user   models.User
	tokens models.SessionTokens

	loginErr    error
	registerErr error
	profileErr  error

	loginCalls    int
	registerCalls int
	profileCalls  int
}

func (s *authAPIStub) Login(_ context.Context, username, password string) (models.User, models.SessionTokens, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return models.User{}, models.SessionTokens{}, s.loginErr
	}
	return s.user, s.tokens, nil
}

func (s *authAPIStub) Register(_ context.Context, input api.RegisterInput) (models.User, models.SessionTokens, error) {
	s.registerCalls++
	if s.registerErr != nil {
		return models.User{}, models.SessionTokens{}, s.registerErr
	}
	return s.user, s.tokens, nil
}

func (s *authAPIStub) Profile(_ context.Context) (models.User, error) {
	s.profileCalls++
	if s.profileErr != nil {
		return models.User{}, s.profileErr
	}
	return s.user, nil
}

func alice() models.User {
	return models.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: models.RoleBuyer}
}

func TestLoginEstablishesSession(t *testing.T) {
	client := &authAPIStub{user: alice(), tokens: models.SessionTokens{Access: "A1", Refresh: "R1"}}
	tokens := NewMemoryTokenStore()
	store := NewStore(client, tokens, "")

	var snapshots []Snapshot
	store.Subscribe(func(s Snapshot) { snapshots = append(snapshots, s) })

	user, err := store.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	snapshot := store.Snapshot()
	if !snapshot.Authenticated() || snapshot.User.ID != 1 {
		t.Fatalf("expected authenticated snapshot: %+v", snapshot)
	}

	held, _ := tokens.Get()
	if held.Access != "A1" || held.Refresh != "R1" {
		t.Fatalf("expected both tokens persisted: %+v", held)
	}

	if len(snapshots) != 1 || !snapshots[0].Authenticated() {
		t.Fatalf("expected one authenticated notification, got %+v", snapshots)
	}
}

func TestLoginFailureLeavesAnonymous(t *testing.T) {
	client := &authAPIStub{loginErr: errors.New("invalid credentials")}
	tokens := NewMemoryTokenStore()
	store := NewStore(client, tokens, "")

	if _, err := store.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("expected login error")
	}

	if store.Snapshot().Authenticated() {
		t.Fatal("expected anonymous session after failed login")
	}
	held, _ := tokens.Get()
	if held.Access != "" || held.Refresh != "" {
		t.Fatalf("expected no persisted tokens: %+v", held)
	}
}

func TestRegisterPreconditionsSkipNetwork(t *testing.T) {
	client := &authAPIStub{}
	store := NewStore(client, NewMemoryTokenStore(), "")

	cases := []api.RegisterInput{
		{Username: "bob", Password: "longenough", Password2: "longenough", Role: "admin"},
		{Username: "bob", Password: "longenough", Password2: "different", Role: models.RoleBuyer},
		{Username: "bob", Password: "short", Password2: "short", Role: models.RoleUploader},
	}

	for i, input := range cases {
		if _, err := store.Register(context.Background(), input); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if client.registerCalls != 0 {
		t.Fatalf("expected zero backend calls, got %d", client.registerCalls)
	}
}

func TestRegisterSuccessBehavesLikeLogin(t *testing.T) {
	client := &authAPIStub{
		user:   models.User{ID: 2, Username: "pat", Role: models.RoleUploader},
		tokens: models.SessionTokens{Access: "A1", Refresh: "R1"},
	}
	tokens := NewMemoryTokenStore()
	store := NewStore(client, tokens, "")

	user, err := store.Register(context.Background(), api.RegisterInput{
		Username:  "pat",
		Email:     "pat@example.com",
		Password:  "secret123",
		Password2: "secret123",
		Role:      models.RoleUploader,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleUploader {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !store.Snapshot().Authenticated() {
		t.Fatal("expected authenticated session")
	}
	held, _ := tokens.Get()
	if held.Access != "A1" {
		t.Fatalf("expected tokens persisted: %+v", held)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	client := &authAPIStub{user: alice(), tokens: models.SessionTokens{Access: "A1", Refresh: "R1"}}
	tokens := NewMemoryTokenStore()
	store := NewStore(client, tokens, "")

	if _, err := store.Login(context.Background(), "alice", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	store.Logout()
	first := store.Snapshot()
	store.Logout()
	second := store.Snapshot()

	if first.Authenticated() || second.Authenticated() {
		t.Fatal("expected anonymous session after logout")
	}
	held, _ := tokens.Get()
	if held.Access != "" || held.Refresh != "" {
		t.Fatalf("expected tokens cleared: %+v", held)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	client := &authAPIStub{user: alice(), tokens: models.SessionTokens{Access: "A1", Refresh: "R1"}}
	tokens := NewMemoryTokenStore()
	store := NewStore(client, tokens, "")

	logged, err := store.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Simulate a fresh invocation sharing the persisted tokens.
	fresh := NewStore(client, tokens, "")

	var sawLoading bool
	fresh.Subscribe(func(s Snapshot) {
		if s.Loading {
			sawLoading = true
		}
	})

	snapshot := fresh.Restore(context.Background())
	if !snapshot.Authenticated() || snapshot.User.Username != logged.Username {
		t.Fatalf("expected restored user %q, got %+v", logged.Username, snapshot)
	}
	if snapshot.Loading {
		t.Fatal("expected loading cleared after restore")
	}
	if !sawLoading {
		t.Fatal("expected subscribers to observe the loading state")
	}
	if client.profileCalls != 1 {
		t.Fatalf("expected one profile call, got %d", client.profileCalls)
	}
}

func TestRestoreWithoutTokenStaysAnonymous(t *testing.T) {
	client := &authAPIStub{}
	store := NewStore(client, NewMemoryTokenStore(), "")

	snapshot := store.Restore(context.Background())
	if snapshot.Authenticated() {
		t.Fatal("expected anonymous session")
	}
	if client.profileCalls != 0 {
		t.Fatal("expected no profile call without a token")
	}
}

func TestRestoreFailureClearsEverything(t *testing.T) {
	client := &authAPIStub{profileErr: errors.New("token expired")}
	tokens := NewMemoryTokenStore()
	_ = tokens.Set(models.SessionTokens{Access: "stale", Refresh: "stale"})
	store := NewStore(client, tokens, "")

	snapshot := store.Restore(context.Background())
	if snapshot.Authenticated() || snapshot.Loading {
		t.Fatalf("expected cleared anonymous session, got %+v", snapshot)
	}
	held, _ := tokens.Get()
	if held.Access != "" || held.Refresh != "" {
		t.Fatalf("expected tokens cleared: %+v", held)
	}
}

func TestInvalidateResetsUser(t *testing.T) {
	client := &authAPIStub{user: alice(), tokens: models.SessionTokens{Access: "A1", Refresh: "R1"}}
	store := NewStore(client, NewMemoryTokenStore(), "")

	if _, err := store.Login(context.Background(), "alice", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var notified int
	store.Subscribe(func(Snapshot) { notified++ })

	store.Invalidate()
	if store.Snapshot().Authenticated() {
		t.Fatal("expected anonymous session after invalidation")
	}
	if notified != 1 {
		t.Fatalf("expected one notification, got %d", notified)
	}
}

func TestCachedUserWrittenAndRemoved(t *testing.T) {
	userPath := filepath.Join(t.TempDir(), "user.json")
	client := &authAPIStub{user: alice(), tokens: models.SessionTokens{Access: "A1", Refresh: "R1"}}
	store := NewStore(client, NewMemoryTokenStore(), userPath)

	if _, err := store.Login(context.Background(), "alice", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	cached, ok := store.CachedUser()
	if !ok || cached.Username != "alice" {
		t.Fatalf("expected cached user, got %+v (%v)", cached, ok)
	}

	store.Logout()
	if _, ok := store.CachedUser(); ok {
		t.Fatal("expected cached user removed on logout")
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	client := &authAPIStub{user: alice(), tokens: models.SessionTokens{Access: "A1", Refresh: "R1"}}
	store := NewStore(client, NewMemoryTokenStore(), "")

	var notified int
	unsubscribe := store.Subscribe(func(Snapshot) { notified++ })
	unsubscribe()

	if _, err := store.Login(context.Background(), "alice", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if notified != 0 {
		t.Fatalf("expected no notifications after unsubscribe, got %d", notified)
	}
}
