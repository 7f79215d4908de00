package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pinger(err error) Pinger {
	return PingerFunc(func(context.Context) error { return err })
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandlerWithPingers(pinger(errors.New("down")), nil)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected liveness to ignore dependencies, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name        string
		postgres    Pinger
		redis       Pinger
		expected    int
		redisStatus string
	}{
		{"all healthy", pinger(nil), pinger(nil), http.StatusOK, "ok"},
		{"redis disabled", pinger(nil), nil, http.StatusOK, "disabled"},
		{"postgres down", pinger(errors.New("refused")), pinger(nil), http.StatusServiceUnavailable, ""},
		{"redis down", pinger(nil), pinger(errors.New("refused")), http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandlerWithPingers(tt.postgres, tt.redis)

			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
			if tt.redisStatus == "" {
				return
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body["redis"] != tt.redisStatus {
				t.Fatalf("expected redis %q, got %q", tt.redisStatus, body["redis"])
			}
		})
	}
}
