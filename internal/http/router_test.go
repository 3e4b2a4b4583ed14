package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context) error { return p.err }

func TestHealth_OK(t *testing.T) {
	env := newTestEnv()

	rec := getJSON(env.router, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok, got %q", resp.Status)
	}
}

func TestHealth_DegradedWhenStoreDown(t *testing.T) {
	env := newTestEnvWithPinger(&stubPinger{err: errStoreDown})

	rec := getJSON(env.router, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %q", resp.Status)
	}
}

func TestDBAvailabilityMiddleware_ShortCircuits(t *testing.T) {
	env := newTestEnvWithPinger(&stubPinger{err: errStoreDown})

	rec := postJSON(env.router, "/auth/signup", map[string]string{
		"email": "user@example.com", "password": "hunter2",
	}, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "service unavailable" {
		t.Fatalf("expected uniform error message, got %q", resp.Error)
	}
}
