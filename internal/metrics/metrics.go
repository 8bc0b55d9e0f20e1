package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tailor_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// StoreOperations counts document store calls by operation, collection and result code.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_store_operations_total",
			Help: "Document store operations by collection and outcome",
		},
		[]string{"op", "collection", "code"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tailor_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"op"},
	)

	// ActiveSubscriptions is the number of open live subscriptions per collection.
	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tailor_store_active_subscriptions",
			Help: "Open live subscriptions per collection",
		},
		[]string{"collection"},
	)

	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tailor_live_connections",
			Help: "Open WebSocket connections on the live endpoint",
		},
	)

	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_cache_lookups_total",
			Help: "Dashboard cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	BackupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_backup_runs_total",
			Help: "Collection backup runs by outcome",
		},
		[]string{"status"},
	)

	// Connection pool gauges, sampled by PoolCollector.
	PoolAcquiredConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailor_db_pool_acquired_connections",
		Help: "Connections currently acquired from the pool",
	})
	PoolIdleConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailor_db_pool_idle_connections",
		Help: "Idle connections in the pool",
	})
	PoolTotalConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailor_db_pool_total_connections",
		Help: "Total connections in the pool",
	})
	PoolMaxConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tailor_db_pool_max_connections",
		Help: "Configured maximum pool size",
	})
)
