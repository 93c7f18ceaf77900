// Package reporter provides sinks for finished spans: structured log
// output, an HTTP collector exporter, a bounded in-memory ring for debug
// surfaces, and a fan-out combinator.
package reporter

import (
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/trace"
)

// Log reports spans as structured log entries.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log reporter.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Report logs the span. Spans that carry an error tag log at error level
// so trace output lines up with regular error logs.
func (l *Log) Report(span *trace.Span) {
	sc := span.Context()
	fields := []zap.Field{
		zap.String("trace_id", sc.TraceID),
		zap.String("span_id", sc.SpanID),
		zap.String("kind", string(span.Kind())),
		zap.String("operation", span.Name()),
		zap.Duration("duration", span.Duration()),
	}
	if sc.ParentID != "" {
		fields = append(fields, zap.String("parent_id", sc.ParentID))
	}
	if ep := span.RemoteEndpoint(); ep != nil {
		fields = append(fields, zap.String("remote", ep.String()))
	}

	if desc, ok := span.Tag(trace.TagError); ok {
		fields = append(fields, zap.String("error", desc))
		l.logger.Error("span completed with error", fields...)
		return
	}
	l.logger.Info("span completed", fields...)
}
