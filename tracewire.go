// Package tracewire assembles a ready-to-use tracing runtime from
// configuration: sampler, reporter pipeline, Prometheus metrics, and the
// optional debug server.
//
// Libraries and tests usually construct the pieces directly from the
// trace, transport, and reporter packages; this package is the front
// door for applications.
package tracewire

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/config"
	"github.com/tracewire/tracewire/debug"
	"github.com/tracewire/tracewire/monitoring"
	"github.com/tracewire/tracewire/reporter"
	"github.com/tracewire/tracewire/trace"
)

// Runtime bundles the assembled tracing components.
type Runtime struct {
	Tracer  *trace.Tracer
	Metrics *monitoring.Metrics
	Debug   *debug.Server
}

// New assembles a Runtime from cfg. The debug server, when enabled, is
// created but not started; call Runtime.Debug.Run from the application.
func New(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	return newRuntime(cfg, logger, nil)
}

func newRuntime(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var metrics *monitoring.Metrics
	if reg != nil {
		metrics = monitoring.NewMetricsWith(reg)
	} else {
		metrics = monitoring.NewMetrics()
	}

	sink, err := buildReporter(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	var dbg *debug.Server
	if cfg.Debug.Enabled {
		dbg = debug.NewServer(debug.Options{
			Host:     cfg.Debug.Host,
			Port:     cfg.Debug.Port,
			RingSize: cfg.Debug.RingSize,
			Logger:   logger,
		})
		sink = reporter.NewMulti(sink, dbg)
	}

	tracer := trace.New(cfg.Service.Name,
		trace.WithSampler(buildSampler(cfg)),
		trace.WithReporter(sink),
		trace.WithStats(metrics),
		trace.WithLogger(logger),
		trace.WithBuffer(cfg.Reporter.Buffer),
	)

	return &Runtime{Tracer: tracer, Metrics: metrics, Debug: dbg}, nil
}

// Close drains the tracer and stops the debug server.
func (r *Runtime) Close() error {
	r.Tracer.Close()
	if r.Debug != nil {
		return r.Debug.Close()
	}
	return nil
}

func buildSampler(cfg *config.Config) trace.Sampler {
	switch cfg.Sampling.Strategy {
	case config.SamplerNever:
		return trace.NeverSample()
	case config.SamplerRatio:
		return trace.NewRatioSampler(cfg.Sampling.Ratio)
	case config.SamplerRate:
		return trace.NewRateLimitedSampler(cfg.Sampling.RatePerSecond)
	default:
		return trace.AlwaysSample()
	}
}

func buildReporter(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (trace.Reporter, error) {
	switch cfg.Reporter.Kind {
	case config.ReporterNone:
		return trace.Discard, nil
	case config.ReporterLog:
		return reporter.NewLog(logger), nil
	case config.ReporterHTTP:
		sink, err := reporter.NewHTTP(reporter.HTTPConfig{
			Endpoint:   cfg.Reporter.Endpoint,
			Timeout:    cfg.Reporter.Timeout,
			Compress:   cfg.Reporter.Compress,
			MaxRetries: cfg.Reporter.MaxRetries,
			Logger:     logger,
			OnError:    metrics.ReporterError,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("tracewire: unknown reporter kind %q", cfg.Reporter.Kind)
	}
}
