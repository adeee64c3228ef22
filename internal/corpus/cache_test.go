package corpus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gcbaptista/jobmatch/model"
)

// gatedSource blocks every fetch until release is closed and counts fetches.
type gatedSource struct {
	docs    []model.Document
	release chan struct{}
	started chan struct{}
	once    sync.Once
	fetches atomic.Int32
}

func newGatedSource(docs []model.Document) *gatedSource {
	return &gatedSource{docs: docs, release: make(chan struct{}), started: make(chan struct{})}
}

func (s *gatedSource) FetchAll(ctx context.Context) ([]model.Document, error) {
	s.fetches.Add(1)
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return s.docs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// changingSource copies its documents when a fetch starts, then holds the first fetch
// until release is closed. Documents added meanwhile are only seen by later fetches.
type changingSource struct {
	mu      sync.Mutex
	docs    []model.Document
	release chan struct{}
	started chan struct{}
	once    sync.Once
	fetches atomic.Int32
}

func newChangingSource(docs ...model.Document) *changingSource {
	return &changingSource{docs: docs, release: make(chan struct{}), started: make(chan struct{})}
}

func (s *changingSource) add(doc model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

func (s *changingSource) FetchAll(ctx context.Context) ([]model.Document, error) {
	s.mu.Lock()
	docs := append([]model.Document(nil), s.docs...)
	s.mu.Unlock()

	s.fetches.Add(1)
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return docs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type failingSource struct{}

func (failingSource) FetchAll(context.Context) ([]model.Document, error) {
	return nil, errors.New("connection refused")
}

func TestCache_CurrentBuildsOnce(t *testing.T) {
	source := newGatedSource(sampleDocuments())
	cache := NewCache(source, nil, WithLogger(zaptest.NewLogger(t)))

	const callers = 16
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snaps[i], errs[i] = cache.Current(context.Background())
		}()
	}

	<-source.started
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), source.fetches.Load())
	assert.Equal(t, uint64(1), cache.Builds())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, snaps[0], snaps[i])
	}
}

func TestCache_StaleSnapshotRebuildsInBackground(t *testing.T) {
	source := NewMemorySource(sampleDocuments()...)
	cache := NewCache(source, nil)
	ctx := context.Background()

	first, err := cache.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version())

	again, err := cache.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again, "a fresh snapshot is reused")

	_, err = source.Upsert(ctx, []model.Document{{ID: "job-new", Name: "Backend Engineer", Description: "Go services"}})
	require.NoError(t, err)
	cache.Invalidate(first)
	assert.True(t, first.Stale())

	stale, err := cache.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale, "the stale snapshot is served while the rebuild runs")

	require.Eventually(t, func() bool {
		snap := cache.Peek()
		return snap != nil && snap.Version() == 2
	}, 2*time.Second, 10*time.Millisecond)

	fresh, err := cache.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Len())
	assert.False(t, fresh.Stale())
}

func TestCache_InvalidateIgnoresOldSnapshot(t *testing.T) {
	cache := NewCache(NewMemorySource(sampleDocuments()...), nil)
	ctx := context.Background()

	first, err := cache.Refresh(ctx)
	require.NoError(t, err)
	second, err := cache.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), second.Version())

	cache.Invalidate(first)
	assert.False(t, second.Stale())

	cache.Invalidate(nil)
	assert.True(t, second.Stale())
}

func TestCache_EmptyCorpusPublishesEmptySnapshot(t *testing.T) {
	cache := NewCache(NewMemorySource(), nil)

	snap, err := cache.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
	assert.Equal(t, uint64(1), snap.Version())
	assert.Same(t, snap, cache.Peek())
}

func TestCache_FetchError(t *testing.T) {
	cache := NewCache(failingSource{}, nil)

	_, err := cache.Current(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, cache.Peek())
}

func TestCache_RefreshHonorsCallerContext(t *testing.T) {
	source := newGatedSource(sampleDocuments())
	cache := NewCache(source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cache.Refresh(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(source.release)
	require.Eventually(t, func() bool { return cache.Peek() != nil }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, cache.Peek().Len())
}

func TestCache_RefreshAfterChangeDuringBuild(t *testing.T) {
	docs := sampleDocuments()
	source := newChangingSource(docs[0])
	cache := NewCache(source, nil, WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := cache.Refresh(ctx)
		firstDone <- err
	}()
	<-source.started

	source.add(docs[1])
	type result struct {
		snap *Snapshot
		err  error
	}
	refreshed := make(chan result, 1)
	go func() {
		snap, err := cache.Refresh(ctx)
		refreshed <- result{snap, err}
	}()
	time.Sleep(50 * time.Millisecond)
	cache.Invalidate(nil)
	close(source.release)

	res := <-refreshed
	require.NoError(t, res.err)
	assert.Equal(t, 2, res.snap.Len(), "a refresh requested after the change must see it")
	require.NoError(t, <-firstDone)

	current, err := cache.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Len())
	assert.False(t, current.Stale())
	assert.GreaterOrEqual(t, source.fetches.Load(), int32(2))
}

func TestCache_InvalidateDuringBuildMarksResultStale(t *testing.T) {
	docs := sampleDocuments()
	source := newChangingSource(docs[0])
	cache := NewCache(source, nil, WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	built := make(chan error, 1)
	go func() {
		_, err := cache.Current(ctx)
		built <- err
	}()
	<-source.started

	source.add(docs[1])
	cache.Invalidate(nil)
	close(source.release)
	require.NoError(t, <-built)

	first := cache.Peek()
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Len())
	assert.True(t, first.Stale(), "a build that fetched before the invalidation is stale on arrival")

	_, err := cache.Current(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap := cache.Peek()
		return snap.Len() == 2 && !snap.Stale()
	}, 2*time.Second, 10*time.Millisecond)
}
