package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriqa_queries_total",
			Help: "Total number of resolved queries by response mode and language",
		},
		[]string{"mode", "language"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "agriqa_query_duration_seconds",
			Help: "Duration of the full query resolution pipeline in seconds",
		},
	)

	UpstreamFetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriqa_upstream_fetch_attempts_total",
			Help: "Total number of fetch attempts against the open-data API",
		},
		[]string{"resource"},
	)

	UpstreamFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriqa_upstream_fetch_failures_total",
			Help: "Total number of failed fetch attempts against the open-data API",
		},
		[]string{"resource"},
	)

	GenerationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agriqa_generation_failures_total",
			Help: "Total number of text generation calls that failed",
		},
	)
)
