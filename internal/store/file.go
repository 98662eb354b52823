package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"go-shop-client/internal/model"
)

const (
	saltSize  = 16
	nonceSize = 24
)

// fileCodec marshals state records to disk, optionally sealed with a key
// derived from a passphrase. Refresh secrets are long-lived credentials, so
// a client that persists them can be asked to keep them unreadable at rest.
type fileCodec struct {
	passphrase string
}

func newFileCodec(passphrase string) *fileCodec {
	return &fileCodec{passphrase: passphrase}
}

func (c *fileCodec) encode(v any) ([]byte, error) {
	plain, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	if c.passphrase == "" {
		return plain, nil
	}

	var salt [saltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}

	key, err := c.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)

	return secretbox.Seal(out, plain, &nonce, key), nil
}

func (c *fileCodec) decode(data []byte, v any) error {
	if c.passphrase == "" {
		return json.Unmarshal(data, v)
	}

	if len(data) < saltSize+nonceSize+secretbox.Overhead {
		return model.ErrCorruptState
	}

	var salt [saltSize]byte
	copy(salt[:], data[:saltSize])

	key, err := c.deriveKey(salt)
	if err != nil {
		return err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[saltSize:saltSize+nonceSize])

	plain, ok := secretbox.Open(nil, data[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return model.ErrCorruptState
	}

	return json.Unmarshal(plain, v)
}

func (c *fileCodec) deriveKey(salt [saltSize]byte) (*[32]byte, error) {
	raw, err := scrypt.Key([]byte(c.passphrase), salt[:], 1<<15, 8, 1, 32)
	if err != nil {
		return nil, err
	}

	var key [32]byte
	copy(key[:], raw)

	return &key, nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated state file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
