package chat

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the chat pipeline.
type Metrics struct {
	turns            *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	promptTokens     *prometheus.HistogramVec
	persistFailures  *prometheus.CounterVec
}

// MustNewMetrics registers the chat collectors with reg and panics on a
// registration conflict. Tests should pass a fresh prometheus.NewRegistry().
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "futureself",
				Subsystem: "chat",
				Name:      "turns_total",
				Help:      "Chat turns handled, by context type and outcome.",
			},
			[]string{"context", "outcome"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "futureself",
				Subsystem: "chat",
				Name:      "provider_duration_seconds",
				Help:      "Latency of generative-text provider calls.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"context"},
		),
		promptTokens: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "futureself",
				Subsystem: "chat",
				Name:      "prompt_tokens",
				Help:      "Estimated tokens sent to the provider per turn.",
				Buckets:   prometheus.ExponentialBuckets(128, 2, 8),
			},
			[]string{"context"},
		),
		persistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "futureself",
				Subsystem: "chat",
				Name:      "persist_failures_total",
				Help:      "Turns that could not be written after a successful provider reply.",
			},
			[]string{"role"},
		),
	}

	reg.MustRegister(m.turns, m.providerDuration, m.promptTokens, m.persistFailures)
	return m
}
