// Package services declares the contracts between the ranking engine, its collaborators
// and the HTTP boundary.
package services

import (
	"context"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/internal/jobs"
	"github.com/gcbaptista/jobmatch/internal/search"
	"github.com/gcbaptista/jobmatch/model"
)

// CorpusSource returns the authoritative current set of postings. The engine calls it
// only when (re)building a snapshot.
type CorpusSource interface {
	FetchAll(ctx context.Context) ([]model.Document, error)
}

// CorpusWriter stores postings, replacing existing ones with the same id.
type CorpusWriter interface {
	Upsert(ctx context.Context, docs []model.Document) (int, error)
}

// TextExtractor turns an uploaded resume file into plain text. It fails with an
// ExtractionError when no text can be recovered.
type TextExtractor interface {
	Extract(content []byte, fileType string) (string, error)
}

// RankRequest asks for the best postings for one resume text. Nil limits use the configured defaults.
type RankRequest struct {
	Query    string
	TopN     *int
	MinScore *float64
}

// FileRankRequest is a RankRequest whose resume still has to be extracted.
type FileRankRequest struct {
	Content  []byte
	FileType string
	TopN     *int
	MinScore *float64
}

// BatchRankRequest ranks several named resumes against one snapshot.
type BatchRankRequest struct {
	Queries  []search.NamedQuery
	TopN     *int
	MinScore *float64
}

// RankResponse is the outcome of one ranking request. An empty Results slice means no posting
// cleared the threshold; failures are reported as errors instead.
type RankResponse struct {
	QueryID  string               `json:"query_id"`
	Results  []model.RankedResult `json:"results"`
	Total    int                  `json:"total"`
	TopN     int                  `json:"top_n"`
	MinScore float64              `json:"min_score"`
	Scheme   string               `json:"weighting_scheme"`
	Snapshot uint64               `json:"snapshot_version"`
	Took     int64                `json:"took"` // milliseconds
}

// BatchRankResponse wraps a batch ranking with the snapshot it used.
type BatchRankResponse struct {
	*search.BatchResult
	Snapshot uint64 `json:"snapshot_version"`
}

// Ranker ranks resumes against the current corpus snapshot.
type Ranker interface {
	Rank(ctx context.Context, req RankRequest) (*RankResponse, error)
	RankFile(ctx context.Context, req FileRankRequest) (*RankResponse, error)
	RankBatch(ctx context.Context, req BatchRankRequest) (*BatchRankResponse, error)
}

// SnapshotManager exposes the corpus snapshot lifecycle.
type SnapshotManager interface {
	SnapshotInfo(ctx context.Context) (model.SnapshotInfo, error)
	Invalidate()
	RefreshAsync() (string, error) // returns the job id
	ImportAsync(docs []model.Document) (string, error)
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
	JobMetrics() jobs.JobMetricsData
}

// AnalyticsProvider reports aggregated ranking statistics.
type AnalyticsProvider interface {
	Analytics() model.AnalyticsSummary
}

// SettingsProvider exposes the effective ranking settings.
type SettingsProvider interface {
	Settings() config.RankingSettings
}

// Engine is everything the HTTP boundary needs.
type Engine interface {
	Ranker
	SettingsProvider
	SnapshotManager
	JobManager
	AnalyticsProvider
}
