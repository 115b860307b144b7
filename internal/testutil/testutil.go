// Package testutil provides shared test helpers for content roots and user
// files.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/halvard/skald/internal/poststore"
	"github.com/halvard/skald/internal/userstore"
)

// ContentStore creates a temporary content root with a post store.
func ContentStore(t *testing.T) (string, *poststore.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := poststore.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// UserStore creates a user store backed by a file in a temp directory.
func UserStore(t *testing.T) *userstore.Store {
	t.Helper()
	store, err := userstore.New(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}
