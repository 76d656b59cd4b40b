package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mediapedia",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "provider_requests_total",
		Help:      "Total requests to metadata providers by provider and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mediapedia",
		Name:      "provider_request_duration_seconds",
		Help:      "Metadata provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"provider"})

	ResponseCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "response_cache_hits_total",
		Help:      "Provider responses served from the shared response cache.",
	}, []string{"provider"})

	CacheWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "cache_writes_total",
		Help:      "Writes to the local title cache by table.",
	}, []string{"table"})

	ReconciliationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "reconciliations_total",
		Help:      "Detail reconciliations by outcome (fresh, fallback label or failed).",
	}, []string{"outcome"})

	IndexRebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "index_rebuilds_total",
		Help:      "Total rebuilds of the local fuzzy index.",
	})

	IndexedTitles = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mediapedia",
		Name:      "indexed_titles",
		Help:      "Number of titles in the current local index.",
	})

	TrendingRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediapedia",
		Name:      "trending_refreshes_total",
		Help:      "Trending refresh attempts by result status.",
	}, []string{"status"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ResponseCacheHitsTotal,
		CacheWritesTotal,
		ReconciliationsTotal,
		IndexRebuildsTotal,
		IndexedTitles,
		TrendingRefreshesTotal,
	)
}
