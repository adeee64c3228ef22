// Package engine wires the corpus cache, scorer, extractor, job manager and analytics
// into the ranking service used by the HTTP API and the CLI.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/internal/analytics"
	"github.com/gcbaptista/jobmatch/internal/corpus"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/extract"
	"github.com/gcbaptista/jobmatch/internal/jobs"
	"github.com/gcbaptista/jobmatch/internal/logging"
	"github.com/gcbaptista/jobmatch/internal/scoring"
	"github.com/gcbaptista/jobmatch/internal/search"
	"github.com/gcbaptista/jobmatch/model"
	"github.com/gcbaptista/jobmatch/services"
)

// Rank sources recorded in analytics.
const (
	sourceText  = "text"
	sourceFile  = "file"
	sourceBatch = "batch"
)

// Options configures an Engine. Source is required; the rest have defaults.
type Options struct {
	Settings          *config.RankingSettings
	Source            services.CorpusSource
	Writer            services.CorpusWriter // nil makes the corpus read-only
	Extractor         services.TextExtractor
	Logger            *zap.Logger
	MaxConcurrentJobs int
}

// Engine ranks resumes against the current corpus snapshot.
// It implements services.Engine.
type Engine struct {
	settings  config.RankingSettings
	scorer    *scoring.Scorer
	cache     *corpus.Cache
	writer    services.CorpusWriter
	extractor services.TextExtractor
	jobs      *jobs.Manager
	analytics *analytics.Service
	logger    *zap.Logger
}

var _ services.Engine = (*Engine)(nil)

// New validates the settings and assembles an engine. No corpus is fetched until the
// first request or an explicit Warmup.
func New(opts Options) (*Engine, error) {
	if opts.Source == nil {
		return nil, internalErrors.NewValidationError("source", "a corpus source is required")
	}
	logger := logging.OrNop(opts.Logger)

	settings := config.DefaultRankingSettings()
	if opts.Settings != nil {
		settings = opts.Settings.Clone()
		settings.ApplyDefaults()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(settings, scoring.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = extract.New()
	}
	maxJobs := opts.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = 2
	}

	e := &Engine{
		settings:  *settings,
		scorer:    scorer,
		cache:     corpus.NewCache(opts.Source, settings, corpus.WithLogger(logger), corpus.WithExtractor(scorer.Extractor())),
		writer:    opts.Writer,
		extractor: extractor,
		jobs:      jobs.NewManager(maxJobs, logger),
		analytics: analytics.NewService(),
		logger:    logger,
	}
	e.jobs.Start()
	logger.Info("Ranking engine ready",
		zap.String("weighting_scheme", settings.WeightingScheme),
		zap.Bool("sigmoid", settings.Sigmoid.Enabled),
		zap.Int("top_n", settings.TopN),
		zap.Float64("min_score", settings.Threshold()))
	return e, nil
}

// Close stops background jobs.
func (e *Engine) Close() {
	e.jobs.Stop()
}

// Warmup builds the first snapshot so the first request does not pay for it.
func (e *Engine) Warmup(ctx context.Context) (model.SnapshotInfo, error) {
	snap, err := e.cache.Current(ctx)
	if err != nil {
		return model.SnapshotInfo{}, err
	}
	return snap.Info(), nil
}

// Settings returns a copy of the effective ranking settings.
func (e *Engine) Settings() config.RankingSettings {
	return *e.settings.Clone()
}

func (e *Engine) Rank(ctx context.Context, req services.RankRequest) (*services.RankResponse, error) {
	return e.rank(ctx, req.Query, req.TopN, req.MinScore, sourceText)
}

// RankFile extracts the resume text from an uploaded file and ranks it.
func (e *Engine) RankFile(ctx context.Context, req services.FileRankRequest) (*services.RankResponse, error) {
	text, err := e.extractor.Extract(req.Content, req.FileType)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Extracted resume text",
		zap.String("file_type", req.FileType),
		zap.Int("bytes", len(req.Content)),
		zap.String("preview", logging.Truncate(text, 80)))
	return e.rank(ctx, text, req.TopN, req.MinScore, sourceFile)
}

func (e *Engine) rank(ctx context.Context, query string, topNOverride *int, minScoreOverride *float64, source string) (*services.RankResponse, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		return nil, internalErrors.ErrEmptyQuery
	}
	topN, minScore, err := e.limits(topNOverride, minScoreOverride)
	if err != nil {
		return nil, err
	}

	snap, err := e.cache.Current(ctx)
	if err != nil {
		return nil, err
	}
	results, err := search.Rank(ctx, e.scorer, query, snap, topN, minScore)
	if err != nil {
		return nil, err
	}

	took := time.Since(start)
	queryID := uuid.New().String()
	e.track(queryID, source, snap.Version(), results, took)

	return &services.RankResponse{
		QueryID:  queryID,
		Results:  results,
		Total:    len(results),
		TopN:     topN,
		MinScore: minScore,
		Scheme:   e.scorer.Strategy().Name(),
		Snapshot: snap.Version(),
		Took:     took.Milliseconds(),
	}, nil
}

// RankBatch ranks several named resumes against one snapshot.
func (e *Engine) RankBatch(ctx context.Context, req services.BatchRankRequest) (*services.BatchRankResponse, error) {
	start := time.Now()
	topN, minScore, err := e.limits(req.TopN, req.MinScore)
	if err != nil {
		return nil, err
	}

	snap, err := e.cache.Current(ctx)
	if err != nil {
		return nil, err
	}
	batch, err := search.RankBatch(ctx, e.scorer, req.Queries, snap, topN, minScore)
	if err != nil {
		return nil, err
	}

	took := time.Since(start)
	for _, q := range req.Queries {
		e.track(uuid.New().String(), sourceBatch, snap.Version(), batch.Results[q.Name], took)
	}
	return &services.BatchRankResponse{BatchResult: batch, Snapshot: snap.Version()}, nil
}

// limits resolves per-request overrides against the configured defaults.
func (e *Engine) limits(topN *int, minScore *float64) (int, float64, error) {
	n, threshold := e.settings.TopN, e.settings.Threshold()
	if topN != nil {
		if *topN < 0 {
			return 0, 0, internalErrors.NewValidationError("top_n", "must not be negative")
		}
		n = *topN
	}
	if minScore != nil {
		if math.IsNaN(*minScore) || *minScore < 0 || *minScore > 1 {
			return 0, 0, internalErrors.NewValidationError("min_score", "must be between 0 and 1")
		}
		threshold = *minScore
	}
	return n, threshold, nil
}

func (e *Engine) track(queryID, source string, version uint64, results []model.RankedResult, took time.Duration) {
	event := model.RankEvent{
		QueryID:         queryID,
		Source:          source,
		SnapshotVersion: version,
		ResultCount:     len(results),
		ResponseTime:    took,
	}
	if len(results) > 0 {
		event.TopScore = results[0].Scores.OverallMatch
		event.TopDocumentID = results[0].DocumentID
	}
	e.analytics.TrackRankEvent(event)
	e.logger.Debug("Ranked resume",
		zap.String("query_id", queryID),
		zap.String("source", source),
		zap.Uint64("snapshot_version", version),
		zap.Int("results", len(results)),
		zap.Duration("took", took))
}

// SnapshotInfo describes the current snapshot, building it if needed.
func (e *Engine) SnapshotInfo(ctx context.Context) (model.SnapshotInfo, error) {
	snap, err := e.cache.Current(ctx)
	if err != nil {
		return model.SnapshotInfo{}, err
	}
	return snap.Info(), nil
}

// Invalidate marks the current snapshot stale; the next request triggers a rebuild.
func (e *Engine) Invalidate() {
	e.cache.Invalidate(nil)
}

// RefreshAsync rebuilds the snapshot in a background job and returns the job id.
func (e *Engine) RefreshAsync() (string, error) {
	jobID, err := e.jobs.Submit(model.JobTypeRebuildSnapshot, map[string]string{"operation": "rebuild_snapshot"},
		func(ctx context.Context, progress jobs.ProgressFunc) error {
			progress(0, 1, "Rebuilding snapshot")
			snap, err := e.cache.Refresh(ctx)
			if err != nil {
				return err
			}
			progress(1, 1, fmt.Sprintf("Published snapshot version %d with %d documents", snap.Version(), snap.Len()))
			return nil
		})
	if err != nil {
		return "", fmt.Errorf("failed to start rebuild job: %w", err)
	}
	return jobID, nil
}

// ImportAsync stores docs in the corpus and then rebuilds the snapshot, in a background job.
func (e *Engine) ImportAsync(docs []model.Document) (string, error) {
	if e.writer == nil {
		return "", internalErrors.NewValidationError("corpus.source", "the configured corpus source is read-only")
	}
	if len(docs) == 0 {
		return "", internalErrors.NewValidationError("documents", "at least one document is required")
	}
	owned := make([]model.Document, len(docs))
	copy(owned, docs)

	jobID, err := e.jobs.Submit(model.JobTypeImportCorpus, map[string]string{"documents": fmt.Sprint(len(owned))},
		func(ctx context.Context, progress jobs.ProgressFunc) error {
			progress(0, 2, "Storing documents")
			n, err := e.writer.Upsert(ctx, owned)
			if err != nil {
				return err
			}
			progress(1, 2, fmt.Sprintf("Stored %d documents, rebuilding snapshot", n))
			snap, err := e.cache.Refresh(ctx)
			if err != nil {
				return err
			}
			progress(2, 2, fmt.Sprintf("Published snapshot version %d with %d documents", snap.Version(), snap.Len()))
			return nil
		})
	if err != nil {
		return "", fmt.Errorf("failed to start import job: %w", err)
	}
	return jobID, nil
}

// WaitForJob blocks until a job finishes.
func (e *Engine) WaitForJob(ctx context.Context, jobID string) (*model.Job, error) {
	return e.jobs.Wait(ctx, jobID)
}

func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobs.GetJob(jobID)
}

func (e *Engine) ListJobs(status *model.JobStatus) []*model.Job {
	return e.jobs.ListJobs(status)
}

func (e *Engine) JobMetrics() jobs.JobMetricsData {
	return e.jobs.GetMetrics()
}

func (e *Engine) Analytics() model.AnalyticsSummary {
	return e.analytics.Analytics()
}
