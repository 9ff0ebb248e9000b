// Package metrics provides Prometheus metrics for newsbot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsbot"

var (
	// PipelineRuns counts pipeline runs by outcome (processed, no_article, duplicate, failed).
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	// PipelineDuration measures end-to-end pipeline run duration.
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// ModelRequests counts language model calls by operation and status.
	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Total number of language model requests",
		},
		[]string{"operation", "status"},
	)

	// ModelDuration measures language model round trips.
	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Duration of language model requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Notifications counts outbound article notifications.
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of article notifications by status",
		},
		[]string{"status"},
	)

	// FeedbackEvents counts inbound reactions.
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_events_total",
			Help:      "Total number of feedback events by reaction and status",
		},
		[]string{"reaction", "status"},
	)

	// Recommendations observes the size of recommendation lists.
	Recommendations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_size",
			Help:      "Number of articles returned per recommendation request",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
	)

	// WebhookUpdates counts inbound webhook updates by kind.
	WebhookUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_updates_total",
			Help:      "Total number of Telegram updates received",
		},
		[]string{"kind"},
	)
)
