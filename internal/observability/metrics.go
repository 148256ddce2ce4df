// # internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uanodeset_parsing_seconds",
		Help:    "Time spent parsing a NodeSet2 file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"file"})

	MergeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uanodeset_merge_seconds",
		Help:    "Time spent merging parsed files into the graph.",
		Buckets: prometheus.DefBuckets,
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uanodeset_graph_nodes_total",
		Help: "Total number of nodes in the merged address space.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uanodeset_graph_edges_total",
		Help: "Total number of references in the merged address space.",
	})

	GraphWarnings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uanodeset_graph_warnings_total",
		Help: "Non-fatal findings recorded during the last merge.",
	})

	GenerateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uanodeset_generate_seconds",
		Help:    "Time spent serializing a namespace back to XML.",
		Buckets: prometheus.DefBuckets,
	}, []string{"namespace"})

	ExportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uanodeset_export_seconds",
		Help:    "Time spent writing tabular exports.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uanodeset_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uanodeset_rebuilds_total",
		Help: "Total number of graph rebuilds triggered.",
	})

	RebuildErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uanodeset_rebuild_errors_total",
		Help: "Total number of graph rebuilds that failed.",
	})
)
