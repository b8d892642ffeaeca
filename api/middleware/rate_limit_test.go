package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewRateLimitPolicy("quote", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}
	if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request should be blocked, got %d", rec.Code)
	}
}

func TestRateLimit_SeparateCountersPerIP(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewRateLimitPolicy("quote", time.Minute, 1)
	handler := RateLimit(policy, store, nil)(okHandler())

	if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("first ip should pass, got %d", rec.Code)
	}
	if rec := doRequest(handler, "10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Fatalf("second ip should pass, got %d", rec.Code)
	}
	if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first ip should now be blocked, got %d", rec.Code)
	}
}

func TestRateLimit_ForwardedForWins(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewRateLimitPolicy("quote", time.Minute, 1)
	handler := RateLimit(policy, store, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", nil)
	req.RemoteAddr = "127.0.0.1:1"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if _, ok := store.counts["rl:ip:quote:203.0.113.7"]; !ok {
		t.Fatalf("expected forwarded ip in key, got %v", store.counts)
	}
}

func TestRateLimit_StoreErrorFailsOpen(t *testing.T) {
	store := &fakeLimiterStore{err: errors.New("redis down")}
	policy := NewRateLimitPolicy("quote", time.Minute, 1)
	handler := RateLimit(policy, store, nil)(okHandler())

	if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusOK {
		t.Fatalf("store errors must fail open, got %d", rec.Code)
	}
}

func TestRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("quote", 0, 0), &fakeLimiterStore{}, nil)(okHandler())
	for i := 0; i < 5; i++ {
		if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("disabled policy must pass, got %d", rec.Code)
		}
	}

	handler = RateLimit(NewRateLimitPolicy("quote", time.Minute, 1), nil, nil)(okHandler())
	for i := 0; i < 5; i++ {
		if rec := doRequest(handler, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("nil store must pass, got %d", rec.Code)
		}
	}
}
