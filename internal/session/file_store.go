package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/photomart/cli/internal/models"
)

const (
	masterKeyFile = "master.key"
	tokenFile     = "tokens.bin"
	masterKeySize = 32
)

// ErrCorruptTokenFile indicates the persisted token file could not be
// decrypted, typically after manual edits or a replaced master key.
var ErrCorruptTokenFile = errors.New("token file corrupt")

// FileTokenStore persists the token pair encrypted at rest. A random master
// key lives next to the token file with owner-only permissions; the sealing
// key is derived from it with HKDF-SHA256 so the master key itself is never
// used directly as cipher material.
type FileTokenStore struct {
	dir  string
	aead cipher.AEAD

	mu sync.Mutex
}

// NewFileTokenStore opens (or initializes) the token store under dir.
func NewFileTokenStore(dir string) (*FileTokenStore, error) {
	if dir == "" {
		return nil, errors.New("session: token store dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	master, err := loadOrCreateMasterKey(filepath.Join(dir, masterKeyFile))
	if err != nil {
		return nil, err
	}

	sealKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, master, nil, []byte("token-store"))
	if _, err := io.ReadFull(kdf, sealKey); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(sealKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &FileTokenStore{dir: dir, aead: aead}, nil
}

// Get reads and decrypts the persisted token pair. A missing file yields zero
// tokens, not an error.
func (s *FileTokenStore) Get() (models.SessionTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return models.SessionTokens{}, nil
	}
	if err != nil {
		return models.SessionTokens{}, err
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return models.SessionTokens{}, ErrCorruptTokenFile
	}

	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return models.SessionTokens{}, ErrCorruptTokenFile
	}

	var tokens models.SessionTokens
	if err := json.Unmarshal(plaintext, &tokens); err != nil {
		return models.SessionTokens{}, ErrCorruptTokenFile
	}
	return tokens, nil
}

// Set encrypts and persists the token pair, replacing any previous file.
func (s *FileTokenStore) Set(tokens models.SessionTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plaintext, err := json.Marshal(tokens)
	if err != nil {
		return err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)

	tmp, err := os.CreateTemp(s.dir, ".tokens-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.tokenPath())
}

// Clear removes the persisted token file. Clearing an absent file is a no-op.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileTokenStore) tokenPath() string {
	return filepath.Join(s.dir, tokenFile)
}

func loadOrCreateMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != masterKeySize {
			return nil, fmt.Errorf("master key at %s has unexpected length %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key = make([]byte, masterKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write master key: %w", err)
	}
	return key, nil
}
