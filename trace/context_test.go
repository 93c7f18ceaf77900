package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanContextValid(t *testing.T) {
	tests := []struct {
		name string
		sc   SpanContext
		want bool
	}{
		{"zero", SpanContext{}, false},
		{"trace id only", SpanContext{TraceID: "4bf92f3577b34da6a3ce929d0e0e4736"}, false},
		{"span id only", SpanContext{SpanID: "00f067aa0ba902b7"}, false},
		{"both ids", SpanContext{TraceID: "4bf92f3577b34da6a3ce929d0e0e4736", SpanID: "00f067aa0ba902b7"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sc.Valid())
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	sc := SpanContext{
		TraceID: "4bf92f3577b34da6a3ce929d0e0e4736",
		SpanID:  "00f067aa0ba902b7",
		Sampled: true,
	}

	ctx := ContextWithSpanContext(context.Background(), sc)
	assert.Equal(t, sc, SpanContextFromContext(ctx))
}

func TestSpanContextFromEmptyContext(t *testing.T) {
	assert.False(t, SpanContextFromContext(context.Background()).Valid())
	assert.False(t, SpanContextFromContext(nil).Valid())
}
