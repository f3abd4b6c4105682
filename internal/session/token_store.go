package session

import (
	"sync"

	"github.com/photomart/cli/internal/models"
)

// NewMemoryTokenStore returns a TokenStore backed by process memory. Used by
// tests and one-shot invocations that must not touch the on-disk keyring.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// MemoryTokenStore implements api.TokenStore without persistence.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens models.SessionTokens
}

// Get returns the stored token pair; zero values when none are held.
func (s *MemoryTokenStore) Get() (models.SessionTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

// Set replaces the stored token pair.
func (s *MemoryTokenStore) Set(tokens models.SessionTokens) error {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()
	return nil
}

// Clear drops both tokens.
func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	s.tokens = models.SessionTokens{}
	s.mu.Unlock()
	return nil
}
