package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medtranslator"

// Outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeFailed            = "failed"
	OutcomeMissingCredential = "missing_credential"
	OutcomeRejected          = "rejected"
)

var (
	Translations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translations_total",
		Help:      "Translation requests by outcome.",
	}, []string{"outcome"})

	Summaries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summaries_total",
		Help:      "Summary requests by outcome.",
	}, []string{"outcome"})

	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_mutations_total",
		Help:      "Conversation log mutations by operation.",
	}, []string{"op"})

	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_failures_total",
		Help:      "Failed writes of a serialized conversation log.",
	})

	CollaboratorLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "collaborator_request_seconds",
		Help:      "Latency of calls to the language collaborator.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"provider"})
)

// ObserveCollaborator records the time elapsed since start.
func ObserveCollaborator(provider string, start time.Time) {
	CollaboratorLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}
