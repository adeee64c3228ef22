// Package corpus owns the job-posting corpus: where documents come from, how an
// immutable snapshot is built from them, and the cache that hands snapshots to
// concurrent rankers.
package corpus

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/index"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/features"
	"github.com/gcbaptista/jobmatch/internal/tokenizer"
	"github.com/gcbaptista/jobmatch/model"
)

// Snapshot is an immutable view of the corpus: the documents, their lexical index and
// their pre-extracted feature profiles, all addressed by the same position.
// Only the stale flag changes after construction.
type Snapshot struct {
	id         string
	version    uint64
	generation uint64 // cache generation observed before the corpus was fetched
	docs       []model.Document
	profiles   []features.Profile
	idx        *index.Index
	builtAt    time.Time
	buildTime  time.Duration
	stale      atomic.Bool
}

// BuildSnapshot builds a snapshot with the default feature extractor.
func BuildSnapshot(ctx context.Context, docs []model.Document, settings *config.RankingSettings, version uint64) (*Snapshot, error) {
	return buildSnapshot(ctx, docs, settings, version, features.Default())
}

func buildSnapshot(ctx context.Context, docs []model.Document, settings *config.RankingSettings, version uint64, extractor *features.Extractor) (*Snapshot, error) {
	if len(docs) == 0 {
		return nil, internalErrors.NewEmptyCorpusError()
	}
	if settings == nil {
		settings = config.DefaultRankingSettings()
	}
	start := time.Now()

	owned := make([]model.Document, len(docs))
	copy(owned, docs)
	if err := checkIDs(owned); err != nil {
		return nil, err
	}

	texts := make([]string, len(owned))
	for i := range owned {
		texts[i] = owned[i].BoostedText()
	}

	profiles, err := extractProfiles(ctx, owned, extractor, settings.BuildWorkers)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(texts, indexOptions(settings))
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		id:        uuid.New().String(),
		version:   version,
		docs:      owned,
		profiles:  profiles,
		idx:       idx,
		builtAt:   time.Now().UTC(),
		buildTime: time.Since(start),
	}, nil
}

// newEmptySnapshot stands in for a corpus with no documents. Ranking against it yields no results.
func newEmptySnapshot(version uint64) *Snapshot {
	return &Snapshot{
		id:      uuid.New().String(),
		version: version,
		builtAt: time.Now().UTC(),
	}
}

func checkIDs(docs []model.Document) error {
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return internalErrors.NewValidationError(fmt.Sprintf("documents[%d].id", i), "must not be empty")
		}
		if _, dup := seen[doc.ID]; dup {
			return internalErrors.NewValidationError(fmt.Sprintf("documents[%d].id", i), fmt.Sprintf("duplicate document id '%s'", doc.ID))
		}
		seen[doc.ID] = struct{}{}
	}
	return nil
}

// extractProfiles runs feature extraction for every document on a bounded worker pool.
// Each task writes only its own slot, so the result needs no locking.
func extractProfiles(ctx context.Context, docs []model.Document, extractor *features.Extractor, workers int) ([]features.Profile, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction pool: %w", err)
	}
	defer pool.Release()

	profiles := make([]features.Profile, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			profiles[i] = extractor.Extract(docs[i].FeatureText())
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to submit extraction task: %w", err)
		}
	}
	wg.Wait()
	return profiles, nil
}

func indexOptions(settings *config.RankingSettings) index.Options {
	analyzerOpts := tokenizer.Options{
		Stem:     settings.Analyzer.Stem,
		MaxNGram: settings.Analyzer.MaxNGram,
	}
	if !settings.Analyzer.KeepStopwords {
		analyzerOpts.Stopwords = tokenizer.DefaultStopwords()
	}
	return index.Options{
		Analyzer:        tokenizer.NewAnalyzer(analyzerOpts),
		MinDocFreq:      settings.Analyzer.MinDocFreq,
		MaxDocFreqRatio: settings.Analyzer.MaxDocFreqRatio,
		K1:              settings.BM25.K1,
		B:               settings.BM25.LengthNormalization(),
	}
}

// Len returns the number of documents. A nil snapshot has none.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.docs)
}

func (s *Snapshot) LexicalIndex() *index.Index {
	return s.idx
}

func (s *Snapshot) Document(i int) model.Document {
	return s.docs[i]
}

func (s *Snapshot) DocumentID(i int) string {
	return s.docs[i].ID
}

func (s *Snapshot) DocumentProfile(i int) features.Profile {
	return s.profiles[i]
}

// Documents returns a copy of the snapshot's documents in index order.
func (s *Snapshot) Documents() []model.Document {
	if s == nil {
		return nil
	}
	out := make([]model.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s *Snapshot) ID() string      { return s.id }
func (s *Snapshot) Version() uint64 { return s.version }

// Stale reports whether the snapshot was invalidated after it was published.
func (s *Snapshot) Stale() bool {
	return s.stale.Load()
}

func (s *Snapshot) markStale() {
	s.stale.Store(true)
}

// Info summarizes the snapshot for status endpoints.
func (s *Snapshot) Info() model.SnapshotInfo {
	info := model.SnapshotInfo{
		ID:              s.id,
		Version:         s.version,
		DocumentCount:   len(s.docs),
		BuiltAt:         s.builtAt.Format(time.RFC3339),
		BuildDurationMs: float64(s.buildTime.Microseconds()) / 1000,
		Stale:           s.Stale(),
	}
	if s.idx != nil {
		info.VocabularySize = s.idx.VocabularySize()
	}
	return info
}
