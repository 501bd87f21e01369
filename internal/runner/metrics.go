package runner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments the Runner updates, trimmed from
// the teacher's much larger internal/infrastructure/monitoring.Metrics
// (HTTP/DB/tool/LLM counters that have no equivalent concern here) down to
// the three series a graph scheduler itself produces: a dispatch counter and
// a duration histogram updated once per node execution, and a gauge of runs
// in flight.
var (
	nodeDispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duragraph",
			Subsystem: "runner",
			Name:      "node_dispatches_total",
			Help:      "Total number of node dispatches, by kind and outcome.",
		},
		[]string{"kind", "status"},
	)
	nodeDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "duragraph",
			Subsystem: "runner",
			Name:      "node_dispatch_duration_seconds",
			Help:      "Duration of a single node's execute pipeline.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	runsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "duragraph",
			Subsystem: "runner",
			Name:      "runs_active",
			Help:      "Number of Runner.Run invocations currently in flight.",
		},
	)
)

func recordDispatch(kind, status string, d time.Duration) {
	nodeDispatchesTotal.WithLabelValues(kind, status).Inc()
	nodeDispatchDuration.WithLabelValues(kind).Observe(d.Seconds())
}
