package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segyhp/circulation-engine/internal/metrics"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()

	// Nothing listens on port 1, so every ping fails fast.
	db, err := sqlx.Open("postgres", "postgres://circulation@127.0.0.1:1/circulation?sslmode=disable&connect_timeout=1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	return NewRouter(NewHealthHandler(db, nil, time.Second), reg), m
}

func TestRouter(t *testing.T) {
	router, m := newTestRouter(t)
	m.LoansAnonymized.Add(3)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		checkBody      func(t *testing.T, body []byte)
	}{
		{
			name:           "liveness",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				var resp struct {
					OK   bool         `json:"ok"`
					Data HealthStatus `json:"data"`
				}
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.True(t, resp.OK)
				assert.Equal(t, "ok", resp.Data.Status)
			},
		},
		{
			name:           "readiness with unreachable database",
			method:         http.MethodGet,
			path:           "/health/ready",
			expectedStatus: http.StatusServiceUnavailable,
			checkBody: func(t *testing.T, body []byte) {
				var resp struct {
					OK   bool         `json:"ok"`
					Data HealthStatus `json:"data"`
				}
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.False(t, resp.OK)
				assert.Equal(t, "error", resp.Data.Status)
				assert.Contains(t, resp.Data.Checks["database"], "failed")
				assert.NotContains(t, resp.Data.Checks, "redis")
			},
		},
		{
			name:           "metrics",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "circulation_loans_anonymized_total 3")
			},
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/loans",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "wrong method",
			method:         http.MethodPost,
			path:           "/health",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, rec.Body.Bytes())
			}
		})
	}
}

func TestNewHealthHandler_DefaultTimeout(t *testing.T) {
	h := NewHealthHandler(nil, nil, 0)
	assert.Equal(t, 5*time.Second, h.timeout)
}
