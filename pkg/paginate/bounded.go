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

// BoundedConfig holds bounded-range paginator configuration.
type BoundedConfig struct {
	// StartParam is the element-offset query parameter name.
	StartParam string

	// SizeParam is the page-size query parameter name.
	SizeParam string

	// PageSize is the fixed number of elements requested per page.
	PageSize int

	// TotalField is the body field declaring the resource's maximum
	// index. Its presence is what makes the exact remaining span
	// computable without heuristics.
	TotalField string
}

// DefaultBoundedConfig returns safe defaults.
func DefaultBoundedConfig() BoundedConfig {
	return BoundedConfig{
		StartParam: "start",
		SizeParam:  "limit",
		PageSize:   100,
		TotalField: "max_line",
	}
}

// Bounded paginates offset/size APIs whose responses declare the
// total element count: one probe at offset zero, then every remaining
// offset in a single further wave.
type Bounded struct {
	fetcher Fetcher
	config  BoundedConfig
	logger  zerolog.Logger
}

// NewBounded creates a bounded-range paginator.
func NewBounded(fetcher Fetcher, config BoundedConfig, logger zerolog.Logger) *Bounded {
	if config.StartParam == "" {
		config.StartParam = "start"
	}
	if config.SizeParam == "" {
		config.SizeParam = "limit"
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}
	if config.TotalField == "" {
		config.TotalField = "max_line"
	}
	return &Bounded{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// Run fetches the whole resource: a probe request at offset zero
// reveals the first page's element count and the declared maximum,
// then the exact remaining offsets are issued as one wave. Every page
// is emitted as it is classified. No recursion is needed; the total
// is known, not estimated.
func (b *Bounded) Run(ctx context.Context, seed batch.Descriptor, emit Emit) error {
	start := time.Now()

	outcomes, err := b.fetcher.Wave(ctx, []batch.Descriptor{b.offsetDescriptor(seed, 0)})
	if err != nil {
		return err
	}
	probe := outcomes[0]
	if probe.Err != nil {
		return fmt.Errorf("paginate %s: %w", seed.URL, probe.Err)
	}
	if err := emit(probe.Result); err != nil {
		return fmt.Errorf("emit page result: %w", err)
	}

	firstCount, err := elementCount(probe.Result.Output, seed.ArrayName)
	if err != nil {
		return fmt.Errorf("paginate %s: %w", seed.URL, err)
	}
	max, err := intField(probe.Result.Output, b.config.TotalField)
	if err != nil {
		return fmt.Errorf("paginate %s: %w", seed.URL, err)
	}

	wave := make([]batch.Descriptor, 0)
	for offset := firstCount; offset < max; offset += b.config.PageSize {
		wave = append(wave, b.offsetDescriptor(seed, offset))
	}

	b.logger.Info().
		Str("url", seed.URL).
		Int("first_count", firstCount).
		Int("declared_max", max).
		Int("remaining_requests", len(wave)).
		Msg("Bounded range computed")

	if len(wave) == 0 {
		return nil
	}

	outcomes, err = b.fetcher.Wave(ctx, wave)
	if err != nil {
		return err
	}

	var failures []error
	for _, oc := range outcomes {
		if oc.Err != nil {
			failures = append(failures, fmt.Errorf("paginate %s: %w", seed.URL, oc.Err))
			continue
		}
		if err := emit(oc.Result); err != nil {
			return fmt.Errorf("emit page result: %w", err)
		}
	}

	b.logger.Info().
		Str("url", seed.URL).
		Int("requests", len(wave)+1).
		Dur("duration", time.Since(start)).
		Msg("Bounded pagination complete")

	return errors.Join(failures...)
}

// offsetDescriptor synthesizes the descriptor for one offset with the
// page size pinned and any pre-existing offset parameter replaced.
func (b *Bounded) offsetDescriptor(seed batch.Descriptor, offset int) batch.Descriptor {
	d := seed
	params := withParam(seed.Params, b.config.SizeParam, strconv.Itoa(b.config.PageSize))
	d.Params = withParam(params, b.config.StartParam, strconv.Itoa(offset))
	return d
}
