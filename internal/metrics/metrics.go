package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	ResultsIngested    *prometheus.CounterVec
	ResultsRejected    *prometheus.CounterVec
	SnapshotsPublished prometheus.Counter
	SnapshotsDropped   prometheus.Counter
	FeedObservers      prometheus.Gauge
}

// New creates and registers all metrics on the given registerer. Tests pass
// a fresh prometheus.NewRegistry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResultsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallyd_results_ingested_total",
			Help: "Result documents merged into the store, by level.",
		}, []string{"level"}),
		ResultsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallyd_results_rejected_total",
			Help: "Result documents rejected before the store, by reason.",
		}, []string{"reason"}),
		SnapshotsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "tallyd_snapshots_published_total",
			Help: "Full-store snapshots broadcast to observers.",
		}),
		SnapshotsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tallyd_snapshots_dropped_total",
			Help: "Snapshots dropped because an observer's buffer was full.",
		}),
		FeedObservers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tallyd_feed_observers",
			Help: "Currently attached snapshot observers.",
		}),
	}
}
