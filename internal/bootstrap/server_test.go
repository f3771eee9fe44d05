package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// stubHealthClient answers Check only.
type stubHealthClient struct {
	grpc_health_v1.HealthClient
	resp *grpc_health_v1.HealthCheckResponse
	err  error
}

func (s stubHealthClient) Check(context.Context, *grpc_health_v1.HealthCheckRequest, ...grpc.CallOption) (*grpc_health_v1.HealthCheckResponse, error) {
	return s.resp, s.err
}

func TestHealthzHandler(t *testing.T) {
	tests := []struct {
		name   string
		client stubHealthClient
		code   int
		body   string
	}{
		{"serving", stubHealthClient{resp: &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}}, http.StatusOK, "SERVING"},
		{"not serving", stubHealthClient{resp: &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}}, http.StatusServiceUnavailable, "NOT_SERVING"},
		{"unreachable", stubHealthClient{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			healthzHandler(tt.client)(w, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.body, body["status"])
		})
	}
}

func TestEvaluate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, evaluate(context.Background(), nil, logger))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, evaluate(context.Background(), map[string]Check{"postgres": ok}, logger))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, evaluate(context.Background(), map[string]Check{"postgres": ok, "redis": down}, logger))
}

func TestNewServers_Routes(t *testing.T) {
	cfg := testConfig(t)
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	s, err := newServers(cfg, api, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer s.healthConn.Close()

	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/destinations", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/"+swaggerFile, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
