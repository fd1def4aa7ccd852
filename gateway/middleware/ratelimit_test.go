package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"auction": {RatePerSecond: 1, Burst: 1},
	})
	handler := limiter.Middleware("auction")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/auction/items/1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", res.Code)
	}
}

func TestRateLimiterSeparatesRoutes(t *testing.T) {
	limiter := NewRateLimiter(map[string]RateLimit{
		"auction": {RatePerSecond: 1, Burst: 1},
		"market":  {RatePerSecond: 1, Burst: 1},
	})
	auctionHandler := limiter.Middleware("auction")(okHandler())
	marketHandler := limiter.Middleware("market")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/auction/items/1", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	res := httptest.NewRecorder()
	auctionHandler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected auction request to succeed, got %d", res.Code)
	}

	marketReq := httptest.NewRequest(http.MethodGet, "/v1/market/items/1", nil)
	marketReq.Header.Set("X-Real-IP", "10.0.0.1")
	marketRes := httptest.NewRecorder()
	marketHandler.ServeHTTP(marketRes, marketReq)
	if marketRes.Code != http.StatusOK {
		t.Fatalf("expected first market request to succeed, got %d", marketRes.Code)
	}
}

func TestRateLimiterUnconfiguredKeyPassesThrough(t *testing.T) {
	limiter := NewRateLimiter(nil)
	handler := limiter.Middleware("auction")(okHandler())
	for i := 0; i < 5; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
		if res.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through, got %d", i, res.Code)
		}
	}
}
