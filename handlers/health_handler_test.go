package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantCache  string
	}{
		{"memory cache", nil, http.StatusOK, "memory"},
		{"database up", pingFunc(func(ctx context.Context) error { return nil }), http.StatusOK, "postgres"},
		{"database down", pingFunc(func(ctx context.Context) error { return errors.New("refused") }), http.StatusServiceUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.db, "venues (v1)").Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "healthy", body["status"])
				assert.Equal(t, tt.wantCache, body["cache"])
				assert.Equal(t, "venues (v1)", body["mode"])
			} else {
				assert.Equal(t, "unhealthy", body["status"])
			}
		})
	}
}
