package reporter

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tracewire/tracewire/trace"
)

// finishedSpan produces a real finished span through a throwaway tracer.
func finishedSpan(t *testing.T, name string, tags map[string]string) *trace.Span {
	t.Helper()
	reported := make(chan *trace.Span, 1)
	tracer := trace.New("test-service", trace.WithReporter(trace.ReporterFunc(func(s *trace.Span) {
		reported <- s
	})))
	t.Cleanup(tracer.Close)

	span := tracer.NextSpan(nil)
	span.SetKind(trace.KindClient)
	span.SetName(name)
	for k, v := range tags {
		span.SetTag(k, v)
	}
	span.Start()
	span.Finish()

	select {
	case s := <-reported:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("span never reported")
		return nil
	}
}

func TestLogReporter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewLog(zap.New(core))

	r.Report(finishedSpan(t, "GET", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)
	assert.Equal(t, "span completed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["operation"])
	assert.NotEmpty(t, fields["trace_id"])
	assert.NotEmpty(t, fields["span_id"])
}

func TestLogReporterErrorSpans(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewLog(zap.New(core))

	r.Report(finishedSpan(t, "GET", map[string]string{trace.TagError: "503"}))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.ErrorLevel, entry.Level)
	assert.Equal(t, "503", entry.ContextMap()["error"])
}

func TestHTTPReporterRequiresEndpoint(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	assert.Error(t, err)
}

func TestHTTPReporterPostsSpan(t *testing.T) {
	var body []byte
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	r, err := NewHTTP(HTTPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	span := finishedSpan(t, "GET", map[string]string{"http.status_code": "200"})
	r.Report(span)

	assert.Equal(t, "application/json", contentType)

	var got []spanPayload
	require.NoError(t, sonic.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, span.Context().TraceID, got[0].TraceID)
	assert.Equal(t, span.Context().SpanID, got[0].SpanID)
	assert.Equal(t, "GET", got[0].Name)
	assert.Equal(t, "client", got[0].Kind)
	assert.Equal(t, "200", got[0].Tags["http.status_code"])
	assert.Equal(t, span.StartTime().UnixMicro(), got[0].Timestamp)
}

func TestHTTPReporterCompression(t *testing.T) {
	var body []byte
	var encoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding = r.Header.Get("Content-Encoding")
		body, _ = io.ReadAll(r.Body)
	}))
	t.Cleanup(srv.Close)

	r, err := NewHTTP(HTTPConfig{Endpoint: srv.URL, Compress: true})
	require.NoError(t, err)

	r.Report(finishedSpan(t, "GET", nil))

	require.Equal(t, "gzip", encoding)
	zr, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)

	var got []spanPayload
	require.NoError(t, sonic.Unmarshal(decoded, &got))
	require.Len(t, got, 1)
}

func TestHTTPReporterDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.WarnLevel)
	var failures atomic.Int32
	r, err := NewHTTP(HTTPConfig{
		Endpoint:   srv.URL,
		MaxRetries: 1,
		Logger:     zap.New(core),
		OnError:    func(error) { failures.Add(1) },
	})
	require.NoError(t, err)

	r.Report(finishedSpan(t, "GET", nil))

	assert.Equal(t, int32(1), failures.Load(), "OnError fires once per span")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "span export failed", logs.All()[0].Message)
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(3)
	assert.Equal(t, 0, r.Len())

	for i := 0; i < 5; i++ {
		r.Report(finishedSpan(t, fmt.Sprintf("op-%d", i), nil))
	}

	assert.Equal(t, 3, r.Len())
	recent := r.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "op-2", recent[0].Name())
	assert.Equal(t, "op-4", recent[2].Name())
}

func TestRingPartial(t *testing.T) {
	r := NewRing(8)
	r.Report(finishedSpan(t, "first", nil))
	r.Report(finishedSpan(t, "second", nil))

	recent := r.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "first", recent[0].Name())
	assert.Equal(t, "second", recent[1].Name())
}

func TestRingDefaultCapacity(t *testing.T) {
	r := NewRing(0)
	r.Report(finishedSpan(t, "op", nil))
	assert.Equal(t, 1, r.Len())
}

func TestMultiFansOut(t *testing.T) {
	var first, second []*trace.Span
	m := NewMulti(
		trace.ReporterFunc(func(s *trace.Span) { first = append(first, s) }),
		nil,
		trace.ReporterFunc(func(s *trace.Span) { second = append(second, s) }),
	)

	span := finishedSpan(t, "op", nil)
	m.Report(span)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Same(t, span, first[0])
	assert.Same(t, span, second[0])
}
