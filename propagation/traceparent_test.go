package propagation

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewire/tracewire/trace"
)

func TestTraceParentInject(t *testing.T) {
	tests := []struct {
		name string
		sc   trace.SpanContext
		want string
	}{
		{
			name: "sampled",
			sc: trace.SpanContext{
				TraceID: "4bf92f3577b34da6a3ce929d0e0e4736",
				SpanID:  "00f067aa0ba902b7",
				Sampled: true,
			},
			want: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		},
		{
			name: "unsampled still injects",
			sc: trace.SpanContext{
				TraceID: "4bf92f3577b34da6a3ce929d0e0e4736",
				SpanID:  "00f067aa0ba902b7",
				Sampled: false,
			},
			want: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier := MapCarrier{}
			require.NoError(t, TraceParent{}.Inject(tt.sc, carrier))
			assert.Equal(t, tt.want, carrier.Get(TraceParentHeader))
		})
	}
}

func TestTraceParentInjectInvalidContext(t *testing.T) {
	err := TraceParent{}.Inject(trace.SpanContext{}, MapCarrier{})
	assert.Error(t, err)
}

func TestTraceParentExtract(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    trace.SpanContext
		wantErr bool
	}{
		{
			name:  "sampled",
			value: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want: trace.SpanContext{
				TraceID: "4bf92f3577b34da6a3ce929d0e0e4736",
				SpanID:  "00f067aa0ba902b7",
				Sampled: true,
			},
		},
		{
			name:  "unsampled",
			value: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want: trace.SpanContext{
				TraceID: "4bf92f3577b34da6a3ce929d0e0e4736",
				SpanID:  "00f067aa0ba902b7",
				Sampled: false,
			},
		},
		{name: "wrong segment count", value: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7", wantErr: true},
		{name: "short trace id", value: "00-4bf92f-00f067aa0ba902b7-01", wantErr: true},
		{name: "zero trace id", value: "00-00000000000000000000000000000000-00f067aa0ba902b7-01", wantErr: true},
		{name: "zero span id", value: "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01", wantErr: true},
		{name: "uppercase hex rejected", value: "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01", wantErr: true},
		{name: "bad version", value: "0x-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", wantErr: true},
		{name: "bad flags", value: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier := MapCarrier{}
			carrier.Set(TraceParentHeader, tt.value)

			sc, err := TraceParent{}.Extract(carrier)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sc)
		})
	}
}

func TestTraceParentExtractMissing(t *testing.T) {
	_, err := TraceParent{}.Extract(MapCarrier{})
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestTraceParentRoundTrip(t *testing.T) {
	sc := trace.SpanContext{
		TraceID: trace.NewTraceID(),
		SpanID:  trace.NewSpanID(),
		Sampled: true,
	}

	headers := make(http.Header)
	require.NoError(t, TraceParent{}.Inject(sc, HeaderCarrier(headers)))

	got, err := TraceParent{}.Extract(HeaderCarrier(headers))
	require.NoError(t, err)

	// ParentID is local state; it does not survive the wire.
	assert.Equal(t, sc.TraceID, got.TraceID)
	assert.Equal(t, sc.SpanID, got.SpanID)
	assert.Equal(t, sc.Sampled, got.Sampled)
}

func TestHeaderCarrier(t *testing.T) {
	headers := make(http.Header)
	c := HeaderCarrier(headers)

	c.Set("traceparent", "value-1")
	c.Set("traceparent", "value-2")

	assert.Equal(t, "value-2", c.Get("traceparent"))
	assert.Equal(t, "value-2", c.Get("Traceparent"))
	assert.Len(t, c.Keys(), 1)
}

func TestMapCarrierCanonicalizesKeys(t *testing.T) {
	c := MapCarrier{}
	c.Set("traceparent", "v")

	assert.Equal(t, "v", c.Get("Traceparent"))
	assert.Equal(t, "v", c.Get("traceparent"))
	assert.Len(t, c.Keys(), 1)
}
