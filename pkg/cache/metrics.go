package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageCacheHits tracks pages served from Redis.
	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lerg_page_cache_hits_total",
			Help: "Total number of LERG pages served from the cache",
		},
	)

	// PageCacheMisses tracks pages not found in Redis.
	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lerg_page_cache_misses_total",
			Help: "Total number of LERG page cache misses",
		},
	)

	// PageCacheErrors tracks cache operation errors.
	PageCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lerg_page_cache_errors_total",
			Help: "Total number of page cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear"
	)
)
