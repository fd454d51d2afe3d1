package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Routing metrics
	RouteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapforge_route_requests_total",
			Help: "Total number of route requests",
		},
		[]string{"trade_type", "status"},
	)

	RouteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapforge_route_duration_seconds",
			Help:    "Route request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trade_type"},
	)

	CandidatePoolCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapforge_candidate_pool_count",
		Help:    "Number of candidate pools selected per route request",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
	})

	PathsEnumerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapforge_paths_enumerated",
		Help:    "Number of swap paths enumerated per route request",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250, 500},
	})

	QuotedCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapforge_quoted_candidates",
		Help:    "Number of valid quoted candidates per normalization batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	PlanLegCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapforge_plan_leg_count",
		Help:    "Number of legs in the winning split plan",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 7},
	})

	BlacklistedPools = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapforge_blacklisted_pools_total",
		Help: "Total number of pools blacklisted for failing to quote",
	})

	// Catalog metrics
	CatalogPoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapforge_catalog_pool_count",
		Help: "Total number of pools in the loaded catalog",
	})

	CatalogAssetCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapforge_catalog_asset_count",
		Help: "Total number of assets in the loaded catalog",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapforge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapforge_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
