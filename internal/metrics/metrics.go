package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feedback Metrics
var (
	// FeedbackSubmittedTotal tracks stored feedback by final sentiment label
	FeedbackSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submitted_total",
			Help: "Total feedback records stored, by resolved sentiment",
		},
		[]string{"sentiment"},
	)

	// FeedbackRejectedTotal tracks submissions rejected before persistence
	FeedbackRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_rejected_total",
			Help: "Total feedback submissions rejected, by reason",
		},
		[]string{"reason"},
	)

	// AnalysisDuration tracks keyword analysis latency in seconds
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedback_analysis_duration_seconds",
			Help:    "Sentiment analysis duration in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)

	// CacheOpsTotal tracks report/analysis cache lookups
	CacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache lookups by cache name and result (hit/miss)",
		},
		[]string{"cache", "result"},
	)
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
