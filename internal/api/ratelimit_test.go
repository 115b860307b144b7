package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 3, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	for i, code := range codes[:3] {
		if code != http.StatusOK {
			t.Errorf("request %d = %d, want 200", i, code)
		}
	}
	for i, code := range codes[3:] {
		if code != http.StatusTooManyRequests {
			t.Errorf("request %d = %d, want 429", i+3, code)
		}
	}
}

func TestRateLimiterPerAddress(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("first request from %s = %d", addr, w.Code)
		}
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(context.Background(), 1, 50*time.Millisecond)
	if !rl.allow("10.0.0.1") {
		t.Fatal("first request blocked")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second request within window allowed")
	}
	time.Sleep(80 * time.Millisecond)
	if !rl.allow("10.0.0.1") {
		t.Error("request after window expiry blocked")
	}
}

func TestRateLimiterCleanupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rl := NewRateLimiter(ctx, 1, 10*time.Millisecond)

	cancel()
	select {
	case <-rl.cleanupDone:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup goroutine did not exit after cancel")
	}
}
