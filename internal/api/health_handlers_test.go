package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		config     HealthHandlersConfig
		wantStatus int
		wantBody   string
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies configured",
			config:     HealthHandlersConfig{},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
			wantChecks: map[string]string{"runtime": "ok"},
		},
		{
			name: "all dependencies healthy",
			config: HealthHandlersConfig{
				DBChecker:    stubChecker{},
				RedisChecker: stubChecker{},
			},
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
			wantChecks: map[string]string{"runtime": "ok", "database": "ok", "redis": "ok"},
		},
		{
			name: "database down",
			config: HealthHandlersConfig{
				DBChecker:    stubChecker{err: errors.New("connection refused")},
				RedisChecker: stubChecker{},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
			wantChecks: map[string]string{"runtime": "ok", "database": "error", "redis": "ok"},
		},
		{
			name: "redis down",
			config: HealthHandlersConfig{
				RedisChecker: stubChecker{err: errors.New("timeout")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
			wantChecks: map[string]string{"runtime": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlers(tt.config)
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			h.Health(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			decodeBody(t, rec, &resp)
			if resp.Status != tt.wantBody {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantBody)
			}
			for check, want := range tt.wantChecks {
				if got := resp.Checks[check]; got != want {
					t.Errorf("checks[%q] = %q, want %q", check, got, want)
				}
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
		})
	}
}

func TestHealthRejectsPost(t *testing.T) {
	h := NewHealthHandlers(HealthHandlersConfig{})
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
