// Package cache provides an opt-in Redis-backed page cache for LERG
// query responses.
//
// A run that aborts leaves every successfully fetched page behind with a
// fixed TTL. A re-run inside the TTL window serves those pages from Redis
// instead of re-issuing requests, so only the failed area onward touches
// the feed again. Within a single run the cache never weakens the
// fail-fast policy: an area fetch either completes fully or the run
// aborts; cached pages only change where the bytes come from.
//
// Cache errors degrade to a miss. A broken Redis must never fail a fetch
// that the feed itself could serve.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	pages := cache.NewManager(redisClient, cache.DefaultTTL)
//
//	entry, err := pages.Get(ctx, "npa,nxx,block_id/npa=201?limit=10000&offset=0")
//	if errors.Is(err, cache.ErrMiss) {
//		// fetch from the feed, then pages.Set(...)
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - lerg_page_cache_hits_total - pages served from Redis
//   - lerg_page_cache_misses_total - pages not found in Redis
//   - lerg_page_cache_errors_total{operation} - Redis operation errors
package cache
