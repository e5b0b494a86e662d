// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Pass outcome labels.
const (
	PassOK      = "ok"
	PassTimeout = "timeout"
	PassBusy    = "busy"
	PassError   = "error"
)

// Metrics holds the Prometheus instruments for extraction, merge, profile
// and export activity. Each Metrics owns its registry, so independent
// instances (tests included) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	passesTotal    *prometheus.CounterVec
	passDuration   prometheus.Histogram
	leadsExtracted *prometheus.CounterVec

	mergesTotal   prometheus.Counter
	mergeDuration prometheus.Histogram

	profilesExtracted *prometheus.CounterVec

	exportsTotal   *prometheus.CounterVec
	exportErrors   *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec

	snapshotDuration prometheus.Histogram
}

// NewMetrics creates a metrics set registered on its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	const namespace = "leadscrapexter"

	return &Metrics{
		registry: registry,

		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "passes_total",
			Help:      "Extraction passes by outcome",
		}, []string{"status"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of one extraction pass",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}),
		leadsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "leads_total",
			Help:      "Leads extracted by record family",
		}, []string{"family"}),

		mergesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "merges_total",
			Help:      "Saved-state merge operations",
		}),
		mergeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "merge_duration_seconds",
			Help:      "Duration of read-merge-write cycles",
			Buckets:   prometheus.DefBuckets,
		}),

		profilesExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "profiles_total",
			Help:      "Profiles extracted by platform",
		}, []string{"platform"}),

		exportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "exports_total",
			Help:      "Export runs by format",
		}, []string{"format"}),
		exportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "export_errors_total",
			Help:      "Failed export runs by format",
		}, []string{"format"}),
		recordsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "records_written_total",
			Help:      "Records written by format",
		}, []string{"format"}),

		snapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "browser",
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of page snapshots",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// RecordPass records one extraction pass outcome and its duration.
func (m *Metrics) RecordPass(status string, duration time.Duration) {
	m.passesTotal.WithLabelValues(status).Inc()
	m.passDuration.Observe(duration.Seconds())
}

// RecordLeads records the per-family lead counts of one result.
func (m *Metrics) RecordLeads(result types.ExtractionResult) {
	m.leadsExtracted.WithLabelValues("emails").Add(float64(len(result.Emails)))
	m.leadsExtracted.WithLabelValues("phones").Add(float64(len(result.Phones)))
	m.leadsExtracted.WithLabelValues("social_links").Add(float64(len(result.SocialLinks)))
	m.leadsExtracted.WithLabelValues("serp_linkedin").Add(float64(len(result.SERPLinkedIn)))
}

// RecordMerge records one read-merge-write cycle.
func (m *Metrics) RecordMerge(duration time.Duration) {
	m.mergesTotal.Inc()
	m.mergeDuration.Observe(duration.Seconds())
}

// RecordProfile records one extracted profile.
func (m *Metrics) RecordProfile(platform types.Platform) {
	m.profilesExtracted.WithLabelValues(string(platform)).Inc()
}

// RecordExport records a completed export run.
func (m *Metrics) RecordExport(format string, records int) {
	m.exportsTotal.WithLabelValues(format).Inc()
	m.recordsWritten.WithLabelValues(format).Add(float64(records))
}

// RecordExportError records a failed export run.
func (m *Metrics) RecordExportError(format string) {
	m.exportErrors.WithLabelValues(format).Inc()
}

// RecordSnapshot records one page snapshot duration.
func (m *Metrics) RecordSnapshot(duration time.Duration) {
	m.snapshotDuration.Observe(duration.Seconds())
}

// Handler exposes the metrics in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
