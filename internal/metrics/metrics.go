// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "schoolbot"

// Completion outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

var (
	// CompletionRequests counts completion calls.
	// Labels: provider, outcome (success, fallback)
	CompletionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "completion",
		Name:      "requests_total",
		Help:      "Completion requests by provider and outcome",
	}, []string{"provider", "outcome"})

	// CompletionLatency measures completion round trips.
	CompletionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "completion",
		Name:      "latency_seconds",
		Help:      "Completion request latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"provider"})

	// UpdatesHandled counts Telegram updates per handler.
	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "telegram",
		Name:      "updates_total",
		Help:      "Telegram updates handled, by handler",
	}, []string{"handler"})

	// JournalWriteErrors counts exchanges that could not be journaled.
	JournalWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "journal",
		Name:      "write_errors_total",
		Help:      "Exchanges that failed to be written to the journal",
	})
)

// RegisterCallerGauge exports the number of tracked callers. Registering
// twice is a no-op.
func RegisterCallerGauge(count func() int) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "callers",
		Help:      "Callers currently holding conversation history",
	}, func() float64 { return float64(count()) })

	if err := prometheus.Register(gauge); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}
	return nil
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
