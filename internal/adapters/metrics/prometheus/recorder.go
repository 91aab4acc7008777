package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nissmart/dashboard-cli/internal/ports"
)

const namespace = "nsd"

// Recorder implements ports.Metrics on a private registry so several
// dashboards in one process never collide on the default registerer.
type Recorder struct {
	registry      *prometheus.Registry
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	coalesced     *prometheus.CounterVec
	abandoned     *prometheus.CounterVec
	actions       *prometheus.CounterVec
	actionLatency *prometheus.HistogramVec
}

var _ ports.Metrics = (*Recorder)(nil)

func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of ledger reads issued by polling sessions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stream"}),
		fetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Ledger reads that failed",
		}, []string{"stream"}),
		coalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_coalesced_total",
			Help:      "Refresh requests merged into an in-flight read",
		}, []string{"stream"}),
		abandoned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_abandoned_total",
			Help:      "Responses dropped because their session generation ended",
		}, []string{"stream"}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Submitted actions by kind and outcome",
		}, []string{"kind", "outcome"}),
		actionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Duration of mutating ledger calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

func (r *Recorder) ObserveFetch(stream string, elapsed time.Duration, err error) {
	r.fetchDuration.WithLabelValues(stream).Observe(elapsed.Seconds())
	if err != nil {
		r.fetchErrors.WithLabelValues(stream).Inc()
	}
}

func (r *Recorder) IncCoalesced(stream string) {
	r.coalesced.WithLabelValues(stream).Inc()
}

func (r *Recorder) IncAbandoned(stream string) {
	r.abandoned.WithLabelValues(stream).Inc()
}

// ObserveAction counts every outcome. Latency is only recorded for calls that
// reached the ledger.
func (r *Recorder) ObserveAction(kind string, outcome string, elapsed time.Duration) {
	r.actions.WithLabelValues(kind, outcome).Inc()
	if elapsed > 0 {
		r.actionLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
