package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthCheckBasic(t *testing.T) {
	t.Parallel()

	checker := NewHealthChecker(map[string]Pinger{
		"database": fakePinger{err: errors.New("down")},
	})

	rec := httptest.NewRecorder()
	checker.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// Basic mode does not ping dependencies.
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("status = %q", response.Status)
	}
	if response.Checks != nil {
		t.Error("basic mode should not include checks")
	}
}

func TestHealthCheckExtended(t *testing.T) {
	t.Parallel()

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(map[string]Pinger{
			"database": fakePinger{},
			"redis":    fakePinger{},
		})

		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		var response HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if response.Checks["database"] != "healthy" || response.Checks["redis"] != "healthy" {
			t.Errorf("checks = %v", response.Checks)
		}
	})

	t.Run("dependency down", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(map[string]Pinger{
			"database": fakePinger{err: errors.New("connection refused")},
		})

		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("nil pinger skipped", func(t *testing.T) {
		t.Parallel()
		checker := NewHealthChecker(map[string]Pinger{
			"database": fakePinger{},
			"redis":    nil,
		})

		rec := httptest.NewRecorder()
		checker.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))

		var response HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if _, ok := response.Checks["redis"]; ok {
			t.Error("nil pinger should be skipped")
		}
	})
}
