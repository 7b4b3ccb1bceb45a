package server

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"routine-advisor/internal/types"
)

type visitor struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// RateLimiter is a fixed-window per-client counter keyed by client IP.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.window {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.window {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok || now.Sub(v.windowStart) >= rl.window {
		rl.visitors[key] = &visitor{count: 1, windowStart: now, lastSeen: now}
		return true
	}
	v.lastSeen = now
	if v.count >= rl.limit {
		return false
	}
	v.count++
	return true
}

// clientKey is the host part of RemoteAddr, so every connection from one
// address shares a bucket.
func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil || host == "" {
		return remoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429. Preflight requests are
// never counted.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || rl.Allow(clientKey(r.RemoteAddr)) {
			next.ServeHTTP(w, r)
			return
		}
		setCORSHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "Too many requests. Please try again later."})
	})
}
