package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func statsFn(total int32) func() *PoolStats {
	return func() *PoolStats {
		return &PoolStats{TotalConns: total, MaxConns: 10, Healthy: total > 0}
	}
}

func TestHealthHandler_Healthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := healthHandler(fakePinger{}, statsFn(2))(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status string    `json:"status"`
		Pool   PoolStats `json:"pool"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", body.Status)
	}
	if body.Pool.TotalConns != 2 || !body.Pool.Healthy {
		t.Errorf("unexpected pool stats: %+v", body.Pool)
	}
}

func TestHealthHandler_PingFails(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := healthHandler(fakePinger{err: errors.New("connection refused")}, statsFn(2))(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("expected status unhealthy, got %v", body["status"])
	}
	if body["error"] != "connection refused" {
		t.Errorf("expected ping error in body, got %v", body["error"])
	}
	pool, _ := body["pool"].(map[string]interface{})
	if pool["healthy"] != false {
		t.Errorf("expected pool marked unhealthy, got %v", pool["healthy"])
	}
}
