package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Sync Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "search_requests_total",
			Help:      "Total number of search service requests",
		},
		[]string{"operation", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "search_request_duration_seconds",
			Help:      "Search service request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	DocumentsUploadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "documents_uploaded_total",
			Help:      "Total documents accepted by bulk index calls",
		},
		[]string{"index"},
	)

	GraphQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "graph_queries_total",
			Help:      "Total content graph queries",
		},
		[]string{"status"},
	)

	BuildRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "build_runs_total",
			Help:      "Total sync runs by final state",
		},
		[]string{"state"},
	)
)

var registerOnce sync.Once

// RegisterSyncMetrics registers the sync metrics on the default registry.
// Safe to call more than once.
func RegisterSyncMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchRequestDuration)
		prometheus.MustRegister(DocumentsUploadedTotal)
		prometheus.MustRegister(GraphQueriesTotal)
		prometheus.MustRegister(BuildRunsTotal)
	})
}

// WriteTextfile dumps the default gatherer in the node exporter textfile
// format. A build has no scrape endpoint, so this is how metrics leave it.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// StatusLabel maps an error to the status label value.
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
