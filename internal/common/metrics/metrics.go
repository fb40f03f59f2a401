// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggest_queries_total",
			Help: "Total number of natural-language queries processed, by classified intent",
		},
		[]string{"intent"},
	)

	ClarificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggest_clarifications_total",
			Help: "Total number of queries answered with a clarification instead of a tool suggestion",
		},
		[]string{"reason"},
	)

	SuggestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suggest_duration_seconds",
			Help:    "Duration of suggestion pipeline runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"intent"},
	)

	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_executions_total",
			Help: "Total number of downstream tool invocations",
		},
		[]string{"tool", "status"},
	)

	ToolExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tool_execution_duration_seconds",
			Help: "Duration of downstream tool invocations in seconds",
		},
		[]string{"tool"},
	)
)

// Clarification reasons, kept stable for dashboards.
const (
	ReasonUnknownIntent = "unknown_intent"
	ReasonMissingParams = "missing_params"
)
