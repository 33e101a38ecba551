// Package cache provides response caching with a Redis backend.
//
// The cache manager stores successful GET responses keyed by endpoint
// URL and ordered parameter list, with a fixed TTL chosen by the
// caller. Cached hits let the batch executor skip the physical call
// while still producing a full response record for correlation.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		URL:    "https://api.example.com/items",
//		Params: []string{"limit=100", "page=1"},
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from origin
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - pagewave_cache_hits_total{layer="redis"} - Cache hits
//   - pagewave_cache_misses_total - Cache misses
//   - pagewave_cache_size_bytes{layer="redis"} - Cache size
//   - pagewave_cache_errors_total{operation} - Cache operation errors
//
// Credentials never reach this package: cache keys are built from the
// descriptor's URL and params only, and entries hold response bodies,
// never request headers.
package cache
