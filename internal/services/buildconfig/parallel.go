package buildconfig

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/nativetrace/internal/models"
)

// VariantTrace is one captured build log for a (variant, ABI) pair
type VariantTrace struct {
	BuildCommand string
	Variant      string
	// Abi overrides the ABI derived from output paths when set
	Abi     string
	RawLog  string
	Dialect models.Dialect
}

// AddVariants analyzes traces concurrently, then folds the results in input
// order so key registration stays deterministic.
func (b *Builder) AddVariants(ctx context.Context, traces []VariantTrace) error {
	results := make([]*TraceAnalysis, len(traces))

	g, gctx := errgroup.WithContext(ctx)
	if b.opts.Parallelism > 0 {
		g.SetLimit(b.opts.Parallelism)
	}

	for i, trace := range traces {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runID := uuid.New().String()
			logger := b.logger.WithCorrelationId(runID)
			logger.Debug().
				Str("variant", trace.Variant).
				Str("abi", trace.Abi).
				Str("dialect", trace.Dialect.String()).
				Int("bytes", len(trace.RawLog)).
				Msg("Analyzing build trace")
			results[i] = b.analyze(logger, trace.RawLog, trace.Dialect)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to analyze build traces: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("build trace analysis cancelled: %w", err)
	}

	for i, trace := range traces {
		b.fold(trace, results[i])
	}
	return nil
}
