package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records sale commit outcomes for the diagnostics endpoint.
type SaleMetrics struct {
	duration  prometheus.Histogram
	committed prometheus.Counter
	failed    *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sale_commit_duration_seconds",
		Help:    "Duration of ledger commit round trips in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sale_committed_total",
		Help: "Sales committed to the ledger.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_commit_failed_total",
		Help: "Failed sale commits by error category.",
	}, []string{"category"})
	reg.MustRegister(duration, committed, failed)
	return &SaleMetrics{
		duration:  duration,
		committed: committed,
		failed:    failed,
	}
}

// ObserveCommitDuration records one ledger round trip.
func (s *SaleMetrics) ObserveCommitDuration(duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.Observe(duration.Seconds())
}

// IncCommitted increments the committed-sales counter.
func (s *SaleMetrics) IncCommitted() {
	if s == nil || s.committed == nil {
		return
	}
	s.committed.Inc()
}

// IncFailed increments the failure counter for the given category.
func (s *SaleMetrics) IncFailed(category string) {
	if s == nil || s.failed == nil {
		return
	}
	if category == "" {
		category = "unknown"
	}
	s.failed.WithLabelValues(category).Inc()
}
