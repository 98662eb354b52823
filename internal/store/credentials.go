package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go-shop-client/internal/model"
)

const credentialFile = "credentials.json"

// CredentialStore persists the single credential triple. It is owned by the
// token manager; no other component touches it.
type CredentialStore struct {
	path  string
	codec *fileCodec
	mu    sync.Mutex
}

func NewCredentialStore(dir string, encryptionKey string) (*CredentialStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &CredentialStore{
		path:  filepath.Join(dir, credentialFile),
		codec: newFileCodec(encryptionKey),
	}, nil
}

// Load returns the stored credential, or a zero credential when none exists.
// A file that cannot be decoded is treated as absent; the caller will force
// a fresh login rather than loop on corrupt state.
func (s *CredentialStore) Load() (model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Credential{}, nil
	}
	if err != nil {
		return model.Credential{}, err
	}

	var cred model.Credential
	if err := s.codec.decode(data, &cred); err != nil {
		return model.Credential{}, nil
	}

	return cred, nil
}

func (s *CredentialStore) Save(cred model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.codec.encode(cred)
	if err != nil {
		return err
	}

	return writeFileAtomic(s.path, data)
}

// Clear removes the credential file. Idempotent.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
