package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go-shop-client/internal/model"
)

const guestCartFile = "guest-cart.json"

// GuestCartStore holds cart lines for an unauthenticated visitor. One line
// per product; the guest cart is single-use and is cleared once its lines
// have been carried into a server cart.
type GuestCartStore struct {
	path string
	mu   sync.Mutex
}

func NewGuestCartStore(dir string) (*GuestCartStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &GuestCartStore{path: filepath.Join(dir, guestCartFile)}, nil
}

func (s *GuestCartStore) GetAll() ([]model.GuestLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

// Add merges a delta into the line for the product, creating the line from
// the supplied snapshot when absent. The merged line is returned.
func (s *GuestCartStore) Add(snapshot model.GuestLine, quantity int) (model.GuestLine, error) {
	if quantity < 1 {
		return model.GuestLine{}, model.ErrInvalidQuantity
	}
	if snapshot.ProductID == "" {
		return model.GuestLine{}, model.ErrSnapshotRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLocked()
	if err != nil {
		return model.GuestLine{}, err
	}

	for i := range lines {
		if lines[i].ProductID == snapshot.ProductID {
			lines[i].Quantity += quantity
			if err := s.saveLocked(lines); err != nil {
				return model.GuestLine{}, err
			}
			return lines[i], nil
		}
	}

	snapshot.Quantity = quantity
	lines = append(lines, snapshot)
	if err := s.saveLocked(lines); err != nil {
		return model.GuestLine{}, err
	}

	return snapshot, nil
}

// SetQuantity replaces a line quantity. A quantity below 1 deletes the line;
// a line with zero quantity must never exist.
func (s *GuestCartStore) SetQuantity(productID string, quantity int) (model.GuestLine, error) {
	if quantity < 1 {
		return model.GuestLine{}, s.Remove(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLocked()
	if err != nil {
		return model.GuestLine{}, err
	}

	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			if err := s.saveLocked(lines); err != nil {
				return model.GuestLine{}, err
			}
			return lines[i], nil
		}
	}

	return model.GuestLine{}, model.ErrLineNotFound
}

func (s *GuestCartStore) Remove(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.loadLocked()
	if err != nil {
		return err
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}

	return s.saveLocked(kept)
}

// Clear removes all guest lines. Idempotent.
func (s *GuestCartStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func (s *GuestCartStore) loadLocked() ([]model.GuestLine, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []model.GuestLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, model.ErrCorruptState
	}

	return lines, nil
}

func (s *GuestCartStore) saveLocked(lines []model.GuestLine) error {
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}

	return writeFileAtomic(s.path, data)
}
