package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/halvard/skald/internal/builder"
)

type countingBuilder struct {
	calls atomic.Int32
	ran   chan struct{}
}

func (c *countingBuilder) Build(ctx context.Context) builder.Result {
	c.calls.Add(1)
	select {
	case c.ran <- struct{}{}:
	default:
	}
	return builder.Result{Success: true}
}

func (c *countingBuilder) InProgress() bool { return false }

func TestWatcherRebuildsOnContentChange(t *testing.T) {
	dir := t.TempDir()
	cb := &countingBuilder{ran: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, cb, 50*time.Millisecond) }()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "external-edit.md"), []byte("---\ntitle: x\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-cb.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after content change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}

func TestWatcherIgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	cb := &countingBuilder{ran: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, dir, cb, 50*time.Millisecond) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := cb.calls.Load(); got != 0 {
		t.Errorf("build ran %d times for a non-markdown file", got)
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	cb := &countingBuilder{ran: make(chan struct{}, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, dir, cb, 150*time.Millisecond) }()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "bulk-"+string(rune('a'+i))+".md")
		if err := os.WriteFile(name, []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	if got := cb.calls.Load(); got != 1 {
		t.Errorf("build ran %d times for one burst, want 1", got)
	}
}
