package paginate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pagewave/pagewave/pkg/batch"
	"github.com/rs/zerolog"
)

// Fetcher executes one wave of descriptors through the single-request
// facade. *batch.Executor implements it; tests substitute recorders.
type Fetcher interface {
	Wave(ctx context.Context, wave []batch.Descriptor) ([]batch.Outcome, error)
}

// Emit receives each fetched page as soon as its wave is classified.
// Returning an error halts the whole pagination run.
type Emit func(res batch.Result) error

// HeuristicConfig holds heuristic paginator configuration.
type HeuristicConfig struct {
	// PageParam is the page-number query parameter name.
	PageParam string

	// SizeParam is the page-size query parameter name.
	SizeParam string

	// PageSize is the fixed number of elements requested per page. A
	// page with fewer elements marks its resource as exhausted.
	PageSize int

	// BatchSize is the number of pages requested per wave before
	// continuation is confirmed.
	BatchSize int

	// LookaheadSize is the number of pages requested per wave after
	// the first wave confirms continuation. Larger values trade extra
	// trailing requests for fewer round-trips on deep resources.
	LookaheadSize int
}

// DefaultHeuristicConfig returns safe defaults: probe one page at a
// time, widen to four once a resource proves deep.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		PageParam:     "page",
		SizeParam:     "limit",
		PageSize:      100,
		BatchSize:     1,
		LookaheadSize: 4,
	}
}

// Heuristic paginates page-number APIs with no known upper bound,
// continuing a resource only while every page of its last wave came
// back full.
type Heuristic struct {
	fetcher Fetcher
	config  HeuristicConfig
	logger  zerolog.Logger
}

// NewHeuristic creates a heuristic paginator.
func NewHeuristic(fetcher Fetcher, config HeuristicConfig, logger zerolog.Logger) *Heuristic {
	if config.PageParam == "" {
		config.PageParam = "page"
	}
	if config.SizeParam == "" {
		config.SizeParam = "limit"
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 1
	}
	if config.LookaheadSize <= 0 {
		config.LookaheadSize = config.BatchSize
	}
	return &Heuristic{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// group tracks the pagination state of one resource between waves.
type group struct {
	seed      batch.Descriptor
	start     int  // pages 1..start already requested
	escalated bool // continuation confirmed, wave size is LookaheadSize
	pages     int  // pages requested so far, for logging
}

func (g *group) waveSize(cfg HeuristicConfig) int {
	if g.escalated {
		return cfg.LookaheadSize
	}
	return cfg.BatchSize
}

// Run paginates every seed descriptor until its resource is
// exhausted, emitting each page result as soon as its wave completes.
// Seeds are independent pipelines sharing physical waves: a server
// error aborts only the resource that produced it, and the per-
// resource failures are joined into the returned error. A transport
// failure aborts the whole run, since the shared session itself died.
func (h *Heuristic) Run(ctx context.Context, seeds []batch.Descriptor, emit Emit) error {
	start := time.Now()

	active := make([]*group, 0, len(seeds))
	for _, seed := range seeds {
		active = append(active, &group{seed: seed})
	}

	var failures []error
	wave := 0
	for len(active) > 0 {
		wave++

		descriptors := make([]batch.Descriptor, 0, len(active))
		for _, g := range active {
			n := g.waveSize(h.config)
			for i := 1; i <= n; i++ {
				descriptors = append(descriptors, h.pageDescriptor(g.seed, g.start+i))
			}
		}

		h.logger.Debug().
			Int("wave", wave).
			Int("resources", len(active)).
			Int("pages", len(descriptors)).
			Msg("Dispatching pagination wave")

		outcomes, err := h.fetcher.Wave(ctx, descriptors)
		if err != nil {
			failures = append(failures, err)
			return errors.Join(failures...)
		}

		idx := 0
		next := active[:0]
		for _, g := range active {
			n := g.waveSize(h.config)
			failed := false
			exhausted := false

			for i := 0; i < n; i++ {
				oc := outcomes[idx]
				idx++
				if failed {
					// Partial results of a failing resource wave are
					// discarded, not emitted.
					continue
				}
				if oc.Err != nil {
					failures = append(failures, fmt.Errorf("paginate %s: %w", g.seed.URL, oc.Err))
					failed = true
					continue
				}
				if err := emit(oc.Result); err != nil {
					return fmt.Errorf("emit page result: %w", err)
				}
				count, cerr := elementCount(oc.Result.Output, g.seed.ArrayName)
				if cerr != nil {
					failures = append(failures, fmt.Errorf("paginate %s: %w", g.seed.URL, cerr))
					failed = true
					continue
				}
				if count < h.config.PageSize {
					// A partial or empty page is the end-of-data
					// signal; only the final page may be short.
					exhausted = true
				}
			}

			g.pages += n
			if failed || exhausted {
				h.logger.Debug().
					Str("url", g.seed.URL).
					Int("pages", g.pages).
					Bool("failed", failed).
					Msg("Resource pagination finished")
				continue
			}

			g.start += n
			g.escalated = true
			next = append(next, g)
		}
		active = next
	}

	h.logger.Info().
		Int("resources", len(seeds)).
		Int("waves", wave).
		Dur("duration", time.Since(start)).
		Msg("Pagination complete")

	return errors.Join(failures...)
}

// pageDescriptor synthesizes the descriptor for one page: the seed
// with its page parameter stripped and replaced and the page size
// pinned. Context fields ride along untouched.
func (h *Heuristic) pageDescriptor(seed batch.Descriptor, page int) batch.Descriptor {
	d := seed
	params := withParam(seed.Params, h.config.SizeParam, strconv.Itoa(h.config.PageSize))
	d.Params = withParam(params, h.config.PageParam, strconv.Itoa(page))
	return d
}
