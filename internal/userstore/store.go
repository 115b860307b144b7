// Package userstore persists editor accounts as a flat JSON file.
package userstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/models"
)

// Store is a JSON-file-backed user repository. Users are created on first
// OAuth login and refreshed on every subsequent login; no operation deletes
// them.
type Store struct {
	path string

	mu    sync.Mutex
	users []models.User
}

// New loads the user file at path, creating an empty collection if the file
// does not exist yet.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("userstore: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		return nil, fmt.Errorf("userstore: parse %s: %w", path, err)
	}
	return s, nil
}

// GetByID returns the user with the given provider-assigned ID.
func (s *Store) GetByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("userstore: user %q: %w", id, apperr.ErrNotFound)
}

// Upsert inserts or refreshes a user record. CreatedAt is preserved across
// upserts; UpdatedAt is refreshed on every call.
func (s *Store) Upsert(u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	u.UpdatedAt = now

	found := false
	for i := range s.users {
		if s.users[i].ID == u.ID {
			u.CreatedAt = s.users[i].CreatedAt
			s.users[i] = u
			found = true
			break
		}
	}
	if !found {
		u.CreatedAt = now
		s.users = append(s.users, u)
	}

	if err := s.persist(); err != nil {
		return nil, err
	}
	return &u, nil
}

// persist atomically rewrites the user file. Caller holds s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("userstore: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("userstore: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".skald-users-*")
	if err != nil {
		return fmt.Errorf("userstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("userstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("userstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("userstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("userstore: rename: %w", err)
	}
	success = true
	return nil
}
