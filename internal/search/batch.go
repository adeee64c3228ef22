package search

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/scoring"
	"github.com/gcbaptista/jobmatch/model"
)

// RankBatch ranks several named queries in parallel against the same snapshot.
// Names must be non-empty and unique. The first failing query cancels the rest.
func RankBatch(ctx context.Context, scorer *scoring.Scorer, queries []NamedQuery, snapshot Corpus, topN int, minScore float64) (*BatchResult, error) {
	startTime := time.Now()

	if len(queries) == 0 {
		return nil, internalErrors.NewValidationError("queries", "at least one query is required")
	}
	seen := make(map[string]struct{}, len(queries))
	for _, nq := range queries {
		if nq.Name == "" {
			return nil, internalErrors.NewValidationError("queries", "each query must have a non-empty name")
		}
		if _, dup := seen[nq.Name]; dup {
			return nil, internalErrors.NewValidationError("queries", fmt.Sprintf("duplicate query name '%s'", nq.Name))
		}
		seen[nq.Name] = struct{}{}
	}

	rankings := make([][]model.RankedResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, nq := range queries {
		g.Go(func() error {
			results, err := Rank(gctx, scorer, nq.Text, snapshot, topN, minScore)
			if err != nil {
				return fmt.Errorf("error ranking query '%s': %w", nq.Name, err)
			}
			rankings[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[string][]model.RankedResult, len(queries))
	for i, nq := range queries {
		results[nq.Name] = rankings[i]
	}

	return &BatchResult{
		Results:          results,
		TotalQueries:     len(queries),
		ProcessingTimeMs: float64(time.Since(startTime).Nanoseconds()) / 1e6,
	}, nil
}
