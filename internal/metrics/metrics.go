// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"bucket"},
	)

	APIConditionalHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_conditional_hits_total",
			Help: "Total number of If-None-Match matches answered with 304",
		},
		[]string{"endpoint"},
	)

	// Catalog Metrics
	ListingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_created_total",
			Help: "Total number of listings created",
		},
	)

	ListingsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_deleted_total",
			Help: "Total number of listings deleted",
		},
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_search_queries_total",
			Help: "Total number of catalog search queries executed",
		},
	)

	SearchQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Duration of catalog search queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Quota Metrics
	QuotaReservations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_reservations_total",
			Help: "Total number of successful wave slot reservations",
		},
	)

	QuotaDenials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Total number of reservations denied by an exhausted grant",
		},
	)

	// Broadcast Metrics
	StreamSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stream_subscribers",
			Help: "Current number of connected event stream subscribers",
		},
		[]string{"transport"},
	)

	StreamEventsBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_broadcast_total",
			Help: "Total number of events fanned out to subscribers",
		},
		[]string{"event"},
	)

	StreamSubscribersDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_subscribers_dropped_total",
			Help: "Total number of subscribers dropped for slow or failed delivery",
		},
	)

	// NATS Bridge Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of events published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of events consumed from NATS",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSearch records a catalog search execution.
func RecordSearch(duration time.Duration) {
	SearchQueries.Inc()
	SearchQueryDuration.Observe(duration.Seconds())
}

// RecordReservation records the outcome of a quota reserve.
func RecordReservation(denied bool) {
	if denied {
		QuotaDenials.Inc()
	} else {
		QuotaReservations.Inc()
	}
}

// RecordBroadcast records one event fanned out to count subscribers.
func RecordBroadcast(event string, count int) {
	StreamEventsBroadcast.WithLabelValues(event).Add(float64(count))
}
