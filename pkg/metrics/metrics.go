// Package metrics provides the centralized Prometheus metrics registry
// for the pagewave engine. All metrics are defined in their respective
// packages (batch, cache, ratelimit) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the engine.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/batch):
//   - pagewave_requests_total{class} (Counter): Total requests by status class
//   - pagewave_wave_duration_seconds (Histogram): Duration of one batch wave
//   - pagewave_wave_size (Histogram): Requests per batch wave
//   - pagewave_transport_failures_total (Counter): Waves aborted by transport failure
//
// Budget Metrics (pkg/ratelimit):
//   - pagewave_budget_remaining (Gauge): Errors remaining in the upstream budget window
//   - pagewave_budget_blocks_total (Counter): Waves blocked due to critical budget
//   - pagewave_budget_throttles_total (Counter): Waves throttled due to warning budget
//
// Cache Metrics (pkg/cache):
//   - pagewave_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - pagewave_cache_misses_total (Counter): Cache misses
//   - pagewave_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - pagewave_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pagewave_cache_hits_total[5m])) /
//   (sum(rate(pagewave_cache_hits_total[5m])) + sum(rate(pagewave_cache_misses_total[5m])))
//
//   # Budget Status
//   pagewave_budget_remaining < 20
//
//   # Server Error Rate
//   rate(pagewave_requests_total{class="server"}[5m])
//
//   # P95 Wave Latency
//   histogram_quantile(0.95, rate(pagewave_wave_duration_seconds_bucket[5m]))
