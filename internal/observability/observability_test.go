package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"upper case level", "WARN", "json", false},
		{"invalid level", "verbose", "json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestContextLogger_AttachesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewContextLogger(zap.New(core))

	var ctx context.Context
	handler := chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, ctx)

	logger.Info(ctx, "with id")
	logger.Warn(context.Background(), "without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, RequestID(ctx), entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	ctx := context.Background()

	labels := ResolutionLabels{Strategy: "multimodal", Status: StatusPartial}
	m.RecordResolution(ctx, labels)
	m.RecordResolution(ctx, labels)
	m.RecordUnresolved(ctx, "video", labels)
	m.RecordLatency(ctx, 0.002, labels)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("multimodal", StatusPartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unresolved.WithLabelValues("multimodal", "video")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))

	assert.Panics(t, func() { NewPrometheusMetrics(reg) }, "collectors register once per registry")
}
