package trace

import (
	"math"
	"strconv"

	"golang.org/x/time/rate"
)

// Sampler decides whether a new trace root is recorded. Child spans never
// consult the sampler; they inherit the parent's decision.
//
// Samplers must be safe for concurrent use.
type Sampler interface {
	Sample(traceID string) bool
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(traceID string) bool

// Sample calls f.
func (f SamplerFunc) Sample(traceID string) bool { return f(traceID) }

// AlwaysSample records every trace. Suited to development and debugging.
func AlwaysSample() Sampler {
	return SamplerFunc(func(string) bool { return true })
}

// NeverSample records no traces. Propagation headers are still emitted so
// downstream services can make their own decision.
func NeverSample() Sampler {
	return SamplerFunc(func(string) bool { return false })
}

// NewRatioSampler samples the given fraction of traces, in [0, 1].
// The decision is a deterministic function of the trace ID, so every
// service sampling at the same ratio agrees on the same traces.
func NewRatioSampler(ratio float64) Sampler {
	if ratio <= 0 {
		return NeverSample()
	}
	if ratio >= 1 {
		return AlwaysSample()
	}
	bound := uint64(ratio * math.MaxUint64)
	return SamplerFunc(func(traceID string) bool {
		if len(traceID) < 16 {
			return false
		}
		v, err := strconv.ParseUint(traceID[:16], 16, 64)
		if err != nil {
			return false
		}
		return v < bound
	})
}

// NewRateLimitedSampler records at most perSecond trace roots per second,
// independent of traffic volume. Useful when call rates are bursty and a
// ratio would oversample peaks.
func NewRateLimitedSampler(perSecond float64) Sampler {
	if perSecond <= 0 {
		return NeverSample()
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), int(math.Max(1, perSecond)))
	return SamplerFunc(func(string) bool {
		return limiter.Allow()
	})
}
