package tracewire

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewire/tracewire/config"
	"github.com/tracewire/tracewire/trace"
)

func newRuntimeForTest(t *testing.T, cfg *config.Config) *Runtime {
	t.Helper()
	rt, err := newRuntime(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestNewDefaults(t *testing.T) {
	rt := newRuntimeForTest(t, nil)

	require.NotNil(t, rt.Tracer)
	require.NotNil(t, rt.Metrics)
	assert.Nil(t, rt.Debug)
	assert.Equal(t, "unknown-service", rt.Tracer.Service())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.Strategy = "bogus"

	_, err := newRuntime(cfg, nil, prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestNewWithDebugServer(t *testing.T) {
	cfg := config.Default()
	cfg.Debug.Enabled = true
	cfg.Debug.Port = "0"

	rt := newRuntimeForTest(t, cfg)
	assert.NotNil(t, rt.Debug)
}

func TestNewHTTPReporterRequiresEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Reporter.Kind = config.ReporterHTTP

	_, err := newRuntime(cfg, nil, prometheus.NewRegistry())
	assert.Error(t, err)
}

func TestRuntimeExportsSpans(t *testing.T) {
	received := make(chan []byte, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- body
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Service.Name = "checkout"
	cfg.Reporter.Kind = config.ReporterHTTP
	cfg.Reporter.Endpoint = srv.URL

	rt := newRuntimeForTest(t, cfg)

	span := rt.Tracer.NextSpan(nil)
	span.SetKind(trace.KindClient)
	span.SetName("GET")
	span.Start()
	span.Finish()

	select {
	case body := <-received:
		assert.Contains(t, string(body), span.Context().TraceID)
	case <-time.After(2 * time.Second):
		t.Fatal("no span exported")
	}
}

func TestBuildSampler(t *testing.T) {
	tests := []struct {
		strategy string
		sampled  bool
	}{
		{config.SamplerAlways, true},
		{config.SamplerNever, false},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			cfg := config.Default()
			cfg.Sampling.Strategy = tt.strategy
			s := buildSampler(cfg)
			assert.Equal(t, tt.sampled, s.Sample(trace.NewTraceID()))
		})
	}
}

func TestBuildReporterNone(t *testing.T) {
	cfg := config.Default()
	cfg.Reporter.Kind = config.ReporterNone

	rt := newRuntimeForTest(t, cfg)
	span := rt.Tracer.NextSpan(nil)
	span.Start()
	span.Finish()
}
