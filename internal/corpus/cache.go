package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/jobmatch/config"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/features"
	"github.com/gcbaptista/jobmatch/internal/logging"
	"github.com/gcbaptista/jobmatch/services"
)

const rebuildKey = "rebuild"

// Cache publishes the current snapshot. Readers load it with a single atomic read;
// rebuilds are collapsed so concurrent callers that find no snapshot (or a stale one)
// trigger exactly one fetch and build.
//
// Every corpus-change notification (Refresh, Invalidate) advances the generation. A build
// remembers the generation it saw before fetching, so a change that lands while a build is
// in flight is never satisfied by that build: Refresh builds again, and the published
// snapshot is marked stale so the next Current rebuilds.
type Cache struct {
	source    services.CorpusSource
	settings  *config.RankingSettings
	extractor *features.Extractor
	logger    *zap.Logger

	current    atomic.Pointer[Snapshot]
	version    atomic.Uint64
	generation atomic.Uint64
	builds     atomic.Uint64
	group      singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) { c.logger = logging.OrNop(logger) }
}

// WithExtractor sets the extractor used for document profiles. It must match the
// scorer's extractor so query and document skills come from the same vocabulary.
func WithExtractor(extractor *features.Extractor) CacheOption {
	return func(c *Cache) {
		if extractor != nil {
			c.extractor = extractor
		}
	}
}

// NewCache creates an empty cache. Nothing is fetched until the first Current or Refresh.
func NewCache(source services.CorpusSource, settings *config.RankingSettings, opts ...CacheOption) *Cache {
	if settings == nil {
		settings = config.DefaultRankingSettings()
	}
	c := &Cache{
		source:    source,
		settings:  settings,
		extractor: features.Default(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the published snapshot, building one first if none exists.
// A stale snapshot is still returned while a rebuild runs in the background.
func (c *Cache) Current(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil {
		if snap.Stale() {
			c.refreshInBackground()
		}
		return snap, nil
	}
	return c.refreshSince(ctx, 0)
}

// Peek returns the published snapshot without triggering a build. It may be nil.
func (c *Cache) Peek() *Snapshot {
	return c.current.Load()
}

// Refresh fetches the corpus and publishes a new snapshot that reflects every change made
// before the call. Concurrent calls share builds; a build that fetched before this call
// started is not accepted and another one runs.
// A caller whose ctx ends stops waiting; the build itself continues for the others.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.refreshSince(ctx, c.generation.Add(1))
}

// refreshSince waits for a build that fetched the corpus at generation want or later.
func (c *Cache) refreshSince(ctx context.Context, want uint64) (*Snapshot, error) {
	for {
		ch := c.group.DoChan(rebuildKey, func() (any, error) {
			return c.rebuild(context.WithoutCancel(ctx))
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			snap := res.Val.(*Snapshot)
			if snap.generation >= want {
				return snap, nil
			}
			c.logger.Debug("Joined a build that predates the refresh, rebuilding",
				zap.Uint64("version", snap.Version()))
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Invalidate marks snap stale if it is still the published snapshot. A nil snap marks
// whatever is currently published, along with any snapshot still being built. The next
// Current call starts a rebuild.
func (c *Cache) Invalidate(snap *Snapshot) {
	if snap != nil && snap != c.current.Load() {
		return
	}
	c.generation.Add(1)

	current := c.current.Load()
	if current == nil {
		return
	}
	current.markStale()
	c.logger.Info("Corpus snapshot invalidated", zap.Uint64("version", current.Version()))
}

// Builds returns how many times the corpus was fetched and rebuilt.
func (c *Cache) Builds() uint64 {
	return c.builds.Load()
}

func (c *Cache) refreshInBackground() {
	// DoChan's channel is buffered, so dropping it leaks nothing.
	_ = c.group.DoChan(rebuildKey, func() (any, error) {
		return c.rebuild(context.Background())
	})
}

func (c *Cache) rebuild(ctx context.Context) (*Snapshot, error) {
	c.builds.Add(1)
	start := time.Now()
	generation := c.generation.Load()

	docs, err := c.source.FetchAll(ctx)
	if err != nil {
		c.logger.Error("Failed to fetch corpus", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch corpus: %w", err)
	}

	version := c.version.Add(1)
	snap, err := buildSnapshot(ctx, docs, c.settings, version, c.extractor)
	switch {
	case errors.Is(err, internalErrors.ErrEmptyCorpus):
		c.logger.Warn("Corpus is empty, publishing empty snapshot", zap.Uint64("version", version))
		snap = newEmptySnapshot(version)
	case err != nil:
		c.logger.Error("Failed to build corpus snapshot", zap.Uint64("version", version), zap.Error(err))
		return nil, err
	}

	snap.generation = generation

	c.publish(snap)
	if c.generation.Load() != generation {
		snap.markStale()
		c.logger.Info("Corpus changed during build, snapshot published stale",
			zap.Uint64("version", snap.Version()))
	}
	c.logger.Info("Corpus snapshot published",
		zap.Uint64("version", snap.Version()),
		zap.Int("documents", snap.Len()),
		zap.Int("vocabulary", snap.Info().VocabularySize),
		zap.Duration("duration", time.Since(start)))
	return snap, nil
}

// publish swaps snap in unless a newer version is already published.
func (c *Cache) publish(snap *Snapshot) {
	for {
		old := c.current.Load()
		if old != nil && old.Version() >= snap.Version() {
			return
		}
		if c.current.CompareAndSwap(old, snap) {
			return
		}
	}
}
