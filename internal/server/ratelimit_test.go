package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two hits must pass")
	}
	if rl.Allow("a") {
		t.Fatal("third hit must be rejected")
	}
	if !rl.Allow("b") {
		t.Fatal("keys are independent")
	}

	now = now.Add(2 * time.Minute)
	if !rl.Allow("a") {
		t.Fatal("window should have reset")
	}
	if _, ok := rl.visitors["b"]; ok {
		t.Fatal("stale visitors should be swept")
	}
}

func TestRateLimiterSteadyClientUnderLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 6; i++ {
		if !rl.Allow("a") {
			t.Fatalf("hit %d at %s rejected", i, now.Format(time.TimeOnly))
		}
		now = now.Add(40 * time.Second)
	}
}

func TestRateLimiterWindowDoesNotSlide(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") {
		t.Fatal("first hit must pass")
	}
	now = now.Add(50 * time.Second)
	if rl.Allow("a") {
		t.Fatal("second hit in the same window must be rejected")
	}
	now = now.Add(10 * time.Second)
	if !rl.Allow("a") {
		t.Fatal("rejected hits must not extend the window")
	}
}

func TestClientKey(t *testing.T) {
	cases := map[string]string{
		"203.0.113.7:40001": "203.0.113.7",
		"[2001:db8::1]:443": "2001:db8::1",
		"203.0.113.7":       "203.0.113.7",
		"":                  "",
	}
	for in, want := range cases {
		if got := clientKey(in); got != want {
			t.Errorf("clientKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRateLimiterSkipsPreflight(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("preflight %d: got %d", i, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first POST should pass, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST should be limited, got %d", rec.Code)
	}
}
