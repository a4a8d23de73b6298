// Package metrics declares the prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Loading
	RecordsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsieve_records_loaded_total",
			Help: "Records decoded and normalized from log sources",
		},
	)

	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsieve_records_skipped_total",
			Help: "Malformed NDJSON lines skipped while loading",
		},
	)

	// Filtering
	FilterRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsieve_filter_runs_total",
			Help: "Filter calls, by whether the hot prefilter fell back to severity",
		},
		[]string{"fallback"},
	)

	WindowsSelected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsieve_windows_selected_total",
			Help: "Windows returned by filter calls after ranking",
		},
	)

	FilterDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logsieve_filter_duration_seconds",
			Help:    "Filter call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
	)

	// Analysis
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsieve_analysis_requests_total",
			Help: "Analysis model requests",
		},
		[]string{"model", "kind", "status"}, // kind: analyze/followup
	)

	AnalysisTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsieve_analysis_tokens_total",
			Help: "Analysis model tokens consumed",
		},
		[]string{"model", "type"}, // type: input/output
	)

	AnalysisCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsieve_analysis_cost_usd_total",
			Help: "Estimated analysis cost in USD",
		},
		[]string{"model"},
	)

	// Outputs
	DigestsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsieve_output_digests_dropped_total",
			Help: "Digests dropped by async outputs with a full buffer",
		},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsieve_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"route", "code"},
	)
)
