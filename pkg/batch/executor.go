package batch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pagewave/pagewave/pkg/cache"
	"github.com/pagewave/pagewave/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for executor operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagewave_requests_total",
		Help: "Total requests by status class",
	}, []string{"class"})

	waveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagewave_wave_duration_seconds",
		Help:    "Duration of one batch wave in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	waveSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagewave_wave_size",
		Help:    "Number of requests per batch wave",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	transportFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagewave_transport_failures_total",
		Help: "Total batch waves aborted by a transport failure",
	})
)

// Config holds executor configuration.
type Config struct {
	// HTTPClient is the underlying client. All requests of a wave go
	// through its single connection pool. Nil means a default client
	// with a 30s timeout.
	HTTPClient *http.Client

	// MaxInFlight bounds concurrent requests within one wave.
	MaxInFlight int

	// Timeout applies per request.
	Timeout time.Duration

	// Header is opaque per-call auth material (credentials, tokens).
	// It is applied to the outgoing request only; it never appears in
	// records, logs, or cache keys.
	Header http.Header

	// Cache is an optional response cache for GET descriptors.
	Cache *cache.Manager

	// CacheTTL is the lifetime of cached responses.
	CacheTTL time.Duration

	// Budget is an optional shared error-budget gate consulted once
	// per wave.
	Budget *ratelimit.Tracker
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxInFlight: 10,
		Timeout:     15 * time.Second,
		CacheTTL:    60 * time.Second,
	}
}

// Executor issues batches of descriptors as one multiplexed client
// session and correlates each response back to its descriptor.
type Executor struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates an executor. The logger is injected so tests can pass
// zerolog.Nop().
func New(cfg Config, logger zerolog.Logger) *Executor {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{
		httpClient: httpClient,
		config:     cfg,
		logger:     logger,
	}
}

// Do executes a batch of descriptors as one wave and returns one
// record per descriptor, indexed by ordinal. The caller blocks until
// every response has arrived or the batch fails.
//
// An empty batch performs no physical call and returns an empty
// sequence; a zero-entry session is an error in the underlying
// primitive and is special-cased here. A transport-level failure
// anywhere fails the whole batch with a *TransportError.
func (e *Executor) Do(ctx context.Context, batch []Descriptor) ([]Record, error) {
	if len(batch) == 0 {
		return []Record{}, nil
	}

	start := time.Now()
	waveSize.Observe(float64(len(batch)))
	defer func() {
		waveDuration.Observe(time.Since(start).Seconds())
	}()

	if e.config.Budget != nil {
		allowed, err := e.config.Budget.ShouldAllowWave(ctx)
		if err != nil {
			return nil, fmt.Errorf("budget check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("wave blocked: error budget critical")
		}
	}

	records := make([]Record, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.MaxInFlight)
	for i, d := range batch {
		i, d := i, d
		g.Go(func() error {
			rec, err := e.fetchOne(gctx, i, d)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		transportFailuresTotal.Inc()
		e.logger.Error().
			Err(err).
			Int("wave_size", len(batch)).
			Msg("Batch wave failed")
		return nil, err
	}

	e.logger.Debug().
		Int("wave_size", len(batch)).
		Dur("duration", time.Since(start)).
		Msg("Batch wave complete")

	return records, nil
}

// fetchOne performs the physical call for one descriptor. The ordinal
// is the correlation token; it survives into the record no matter in
// which order responses stream back.
func (e *Executor) fetchOne(ctx context.Context, ordinal int, d Descriptor) (Record, error) {
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	cacheKey := cache.Key{URL: d.URL, Params: d.Params}
	if e.config.Cache != nil && method == http.MethodGet {
		entry, err := e.config.Cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			e.logger.Warn().Err(err).Str("url", d.URL).Msg("Cache get error")
		}
		if entry != nil {
			e.logger.Debug().Str("url", d.URL).Msg("Serving response from cache")
			return e.record(ordinal, d, entry.StatusCode, entry.Data), nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := e.buildRequest(reqCtx, method, d)
	if err != nil {
		return Record{}, fmt.Errorf("build request for %s: %w", d.URL, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Record{}, newTransportError(ordinal, d.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// A truncated body inside an otherwise live session is a
		// protocol violation, fatal to the batch.
		return Record{}, newTransportError(ordinal, d.URL, err)
	}

	if e.config.Budget != nil {
		if err := e.config.Budget.UpdateFromHeaders(ctx, resp.Header); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to update error budget from headers")
		}
	}

	requestsTotal.WithLabelValues(string(Classify(resp.StatusCode))).Inc()
	e.logger.Debug().
		Str("url", d.URL).
		Int("status", resp.StatusCode).
		Int("ordinal", ordinal).
		Int("bytes", len(body)).
		Msg("Response received")

	if e.config.Cache != nil && method == http.MethodGet && Classify(resp.StatusCode) == ClassSuccess {
		entry := &cache.Entry{
			Data:       body,
			StatusCode: resp.StatusCode,
			CachedAt:   time.Now(),
		}
		if err := e.config.Cache.Set(ctx, cacheKey, entry, e.config.CacheTTL); err != nil {
			e.logger.Warn().Err(err).Str("url", d.URL).Msg("Failed to cache response")
		}
	}

	return e.record(ordinal, d, resp.StatusCode, body), nil
}

func (e *Executor) record(ordinal int, d Descriptor, status int, body []byte) Record {
	return Record{
		Descriptor: d,
		Ordinal:    ordinal,
		Status:     status,
		Body:       body,
		Bytes:      len(body),
	}
}

// buildRequest assembles the physical request. GET descriptors carry
// their params as query parameters; other methods send them as a
// url-encoded form body. The configured header set (auth material) is
// applied here and nowhere else.
func (e *Executor) buildRequest(ctx context.Context, method string, d Descriptor) (*http.Request, error) {
	target := d.URL
	var body io.Reader
	encoded := encodeParams(d.Params)

	if method == http.MethodGet {
		if encoded != "" {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target = target + sep + encoded
		}
	} else if encoded != "" {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range e.config.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}
