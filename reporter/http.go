package reporter

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/trace"
)

// HTTPConfig configures the HTTP reporter.
type HTTPConfig struct {
	// Endpoint is the collector URL spans are POSTed to.
	Endpoint string

	// Timeout bounds each POST. Defaults to 5s.
	Timeout time.Duration

	// Compress gzips the payload when set.
	Compress bool

	// MaxRetries bounds delivery retries per span. Defaults to 2.
	MaxRetries int

	// Logger receives delivery failures. Defaults to a no-op.
	Logger *zap.Logger

	// OnError, when set, observes every delivery failure (for metrics).
	OnError func(error)
}

// HTTP delivers finished spans to a collector endpoint as JSON. Each
// span is posted as it arrives; batching policy belongs to the collector
// side, not this sink.
type HTTP struct {
	cfg    HTTPConfig
	client *retryablehttp.Client
}

// spanPayload is the wire shape of an exported span.
type spanPayload struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Name      string            `json:"name"`
	Tags      map[string]string `json:"tags,omitempty"`
	Remote    *trace.Endpoint   `json:"remote_endpoint,omitempty"`
	Timestamp int64             `json:"timestamp_micros"`
	Duration  int64             `json:"duration_micros"`
}

// NewHTTP creates an HTTP reporter.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("reporter: http endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &HTTP{cfg: cfg, client: client}, nil
}

// Report encodes and delivers the span. Failures are logged and counted,
// never propagated; export problems must not disturb the traced process.
func (h *HTTP) Report(span *trace.Span) {
	if err := h.post(span); err != nil {
		h.cfg.Logger.Warn("span export failed",
			zap.String("endpoint", h.cfg.Endpoint),
			zap.Error(err),
		)
		if h.cfg.OnError != nil {
			h.cfg.OnError(err)
		}
	}
}

func (h *HTTP) post(span *trace.Span) error {
	sc := span.Context()
	payload := spanPayload{
		TraceID:   sc.TraceID,
		SpanID:    sc.SpanID,
		ParentID:  sc.ParentID,
		Kind:      string(span.Kind()),
		Name:      span.Name(),
		Tags:      span.Tags(),
		Remote:    span.RemoteEndpoint(),
		Timestamp: span.StartTime().UnixMicro(),
		Duration:  span.Duration().Microseconds(),
	}

	body, err := sonic.Marshal([]spanPayload{payload})
	if err != nil {
		return fmt.Errorf("encode span: %w", err)
	}

	var buf bytes.Buffer
	contentEncoding := ""
	if h.cfg.Compress {
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(body); err != nil {
			return fmt.Errorf("compress span: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress span: %w", err)
		}
		contentEncoding = "gzip"
	} else {
		buf.Write(body)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, h.cfg.Endpoint, buf.Bytes())
	if err != nil {
		return fmt.Errorf("build export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if contentEncoding != "" {
		req.Header.Set("Content-Encoding", contentEncoding)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post spans: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}
