package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func loginRequest(e *echo.Echo, ip string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateLimit_RequestsWithinBurst(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		c, rec := loginRequest(e, "10.0.0.1")
		if err := h(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	e := echo.New()
	limited := 0
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2, OnLimited: func() { limited++ }}
	h := RateLimit(cfg)(okHandler)

	for i := 0; i < 2; i++ {
		c, _ := loginRequest(e, "10.0.0.2")
		if err := h(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	c, rec := loginRequest(e, "10.0.0.2")
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}
	retry, convErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if convErr != nil || retry < 1 {
		t.Errorf("expected positive Retry-After, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Error("expected X-RateLimit-Remaining 0")
	}
	if limited != 1 {
		t.Errorf("expected OnLimited to fire once, got %d", limited)
	}
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})(okHandler)

	c, _ := loginRequest(e, "10.0.0.3")
	if err := h(c); err != nil {
		t.Fatalf("first client: %v", err)
	}
	c, _ = loginRequest(e, "10.0.0.3")
	if err := h(c); err == nil {
		t.Fatal("expected first client to be limited")
	}
	c, _ = loginRequest(e, "10.0.0.4")
	if err := h(c); err != nil {
		t.Fatalf("second client must have its own bucket: %v", err)
	}
}

func TestLimiterStore_SweepsIdle(t *testing.T) {
	s := newLimiterStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute})
	now := time.Now()
	s.now = func() time.Time { return now }

	s.get("a")
	s.get("b")
	if s.size() != 2 {
		t.Fatalf("expected 2 visitors, got %d", s.size())
	}

	now = now.Add(2 * time.Minute)
	s.get("c")
	if s.size() != 1 {
		t.Errorf("expected idle visitors to be swept, got %d", s.size())
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 1 || cfg.BurstSize != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
