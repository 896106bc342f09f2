package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthOK(t *testing.T) {
	repo := newFakeRepo()
	handler := NewHealthHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var status struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", status.Status)
	}
	if status.Checks["database"] != "ok" {
		t.Fatalf("expected database ok, got %q", status.Checks["database"])
	}
}

func TestHealthDegradedWhenDatabaseUnreachable(t *testing.T) {
	repo := newFakeRepo()
	repo.pingErr = errors.New("connection refused")
	handler := NewHealthHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.Health(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
	var status struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != "degraded" {
		t.Fatalf("expected degraded, got %q", status.Status)
	}
	if status.Checks["database"] != "unreachable" {
		t.Fatalf("expected database unreachable, got %q", status.Checks["database"])
	}
}
