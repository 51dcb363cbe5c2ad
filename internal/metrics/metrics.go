package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels aggregations that produced a result.
	OutcomeSuccess = "success"
	// OutcomeError labels aggregations that failed (store or pipeline issues).
	OutcomeError = "error"
)

var (
	aggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "aggregations_total",
			Help:      "Total number of aggregation requests handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	aggregationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "insights",
			Name:      "aggregation_seconds",
			Help:      "Aggregation latency in seconds, including record fetch.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	refreshRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "refresh_runs_total",
			Help:      "Background cache refresh runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	recordsFetchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "insights",
			Name:      "records_fetched_total",
			Help:      "Feedback records fetched from the feedstore.",
		},
	)
)

// Register attaches insights-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		aggregationsTotal,
		aggregationDurationSeconds,
		refreshRunsTotal,
		recordsFetchedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAggregation records an aggregation duration and outcome label.
func ObserveAggregation(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	aggregationsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	aggregationDurationSeconds.Observe(duration.Seconds())
}

// ObserveRefresh records the outcome of a scheduled cache refresh run.
func ObserveRefresh(outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	refreshRunsTotal.WithLabelValues(label).Inc()
}

// AddRecordsFetched tracks how many records a feedstore fetch returned.
func AddRecordsFetched(n int) {
	if n <= 0 {
		return
	}
	recordsFetchedTotal.Add(float64(n))
}
