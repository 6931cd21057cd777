// Package metrics exposes the counters and histograms the sync orchestrator
// and watcher worker update, grounded on the teacher's direct
// prometheus.MustRegister bootstrapping (internal/daemon/http_server_prom.go).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagesync"

// Metrics holds every counter/histogram the orchestrator and watcher touch.
// A single instance is constructed at startup and threaded through both.
type Metrics struct {
	Registry *prometheus.Registry

	BatchesProcessed  prometheus.Counter
	FullSyncsRun      prometheus.Counter
	DraftsDiscovered  prometheus.Counter
	DraftsRejected    *prometheus.CounterVec
	IngestionErrors   prometheus.Counter
	DeletionErrors    prometheus.Counter
	BatchSize         prometheus.Histogram
	DebounceWindowSec prometheus.Histogram
	WatcherOverflows  prometheus.Counter
	NotifierFailures  prometheus.Counter
}

// New constructs and registers every metric against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		BatchesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_processed_total", Help: "Batches processed by the sync orchestrator.",
		}),
		FullSyncsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "full_syncs_total", Help: "Full syncs performed.",
		}),
		DraftsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "drafts_discovered_total", Help: "Drafts successfully materialized during discovery.",
		}),
		DraftsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "drafts_rejected_total", Help: "Drafts rejected during validation, by reason.",
		}, []string{"reason"}),
		IngestionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ingestion_errors_total", Help: "Per-draft repository save failures.",
		}),
		DeletionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "deletion_errors_total", Help: "Per-file repository delete failures.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "batch_size", Help: "Combined change+deletion count per processed batch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		DebounceWindowSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "debounce_window_seconds", Help: "Wall time spent collecting a batch before processing.",
			Buckets: prometheus.DefBuckets,
		}),
		WatcherOverflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "watcher_channel_overflows_total", Help: "Times the bounded watcher channel was full.",
		}),
		NotifierFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifier_failures_total", Help: "Build webhook deliveries that did not succeed.",
		}),
	}

	reg.MustRegister(
		m.BatchesProcessed, m.FullSyncsRun, m.DraftsDiscovered, m.DraftsRejected,
		m.IngestionErrors, m.DeletionErrors, m.BatchSize, m.DebounceWindowSec,
		m.WatcherOverflows, m.NotifierFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns the HTTP handler that serves m's registry in the
// Prometheus exposition format.
func Handler(m *Metrics) http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
