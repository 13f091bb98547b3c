// Package observability holds the process-wide Prometheus collectors.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts API requests by route and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atmoview_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"route", "status"},
	)

	// ProviderRequestDuration measures outbound provider latency.
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atmoview_provider_request_duration_seconds",
			Help:    "Latency of upstream provider calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "outcome"}, // outcome: success, error
	)

	// ElevationCacheTotal counts elevation cache lookups.
	ElevationCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atmoview_elevation_cache_total",
			Help: "Elevation cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// ElevationFallbackTotal counts synthetic elevation profiles served.
	ElevationFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atmoview_elevation_fallback_total",
			Help: "Synthetic elevation profiles served after provider failure",
		},
	)

	// ChatStreamsTotal counts chat streams by outcome.
	ChatStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atmoview_chat_streams_total",
			Help: "Chat relay streams by outcome",
		},
		[]string{"outcome"}, // reply, apology
	)

	// OverlayFramesTotal counts rendered overlay frames by layer.
	OverlayFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atmoview_overlay_frames_total",
			Help: "Overlay frames rendered by layer",
		},
		[]string{"layer"},
	)

	// WarmupRunsTotal counts scheduler warmup executions.
	WarmupRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atmoview_warmup_runs_total",
			Help: "Featured-location warmup runs completed",
		},
	)
)
