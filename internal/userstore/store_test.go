package userstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/halvard/skald/internal/apperr"
	"github.com/halvard/skald/internal/models"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, path
}

func TestUpsertAndGet(t *testing.T) {
	s, _ := tempStore(t)
	u, err := s.Upsert(models.User{ID: "oauth-1", Email: "a@example.com", FirstName: "Ada"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := s.GetByID("oauth-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "a@example.com" || got.FirstName != "Ada" {
		t.Errorf("user = %+v", got)
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	s, _ := tempStore(t)
	first, err := s.Upsert(models.User{ID: "oauth-1", Email: "old@example.com"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	second, err := s.Upsert(models.User{ID: "oauth-1", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v <= %v", second.UpdatedAt, first.UpdatedAt)
	}
	if second.Email != "new@example.com" {
		t.Errorf("email = %q", second.Email)
	}
}

func TestPersistsAcrossReload(t *testing.T) {
	s, path := tempStore(t)
	if _, err := s.Upsert(models.User{ID: "oauth-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	got, err := reloaded.GetByID("oauth-1")
	if err != nil {
		t.Fatalf("GetByID after reload: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := tempStore(t)
	if _, err := s.GetByID("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
