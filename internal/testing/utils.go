// Package testing provides fixtures and helpers shared by the engine and API tests.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/internal/corpus"
	"github.com/gcbaptista/jobmatch/internal/engine"
	"github.com/gcbaptista/jobmatch/model"
	"github.com/gcbaptista/jobmatch/services"
)

// BackendResume matches the backend posting on title, skills and experience.
const BackendResume = "Experienced backend engineer with 5 years Python and SQL database work."

// ScenarioJobs returns a backend and a design posting.
func ScenarioJobs() []model.Document {
	return []model.Document{
		{
			ID:           "A",
			Name:         "Backend Engineer",
			Position:     "Backend Engineer",
			Description:  "Build APIs with Python and SQL",
			Requirements: "3+ years Python, SQL",
		},
		{
			ID:           "B",
			Name:         "Designer",
			Position:     "UX Designer",
			Description:  "Design interfaces",
			Requirements: "Figma, 2+ years",
		},
	}
}

// SampleJobs returns a small but varied corpus.
func SampleJobs() []model.Document {
	return append(ScenarioJobs(),
		model.Document{
			ID:           "C",
			Name:         "Frontend Developer",
			Position:     "Senior Frontend Developer",
			Description:  "Ship user interfaces with React and TypeScript",
			Requirements: "5+ years React, TypeScript, communication skills",
			Location:     "Remote",
			Salary:       &model.SalaryRange{Min: 60000, Max: 80000, Currency: "EUR"},
		},
		model.Document{
			ID:           "D",
			Name:         "Data Engineer",
			Position:     "Data Engineer",
			Description:  "Own data pipelines on AWS with Python, Spark and SQL",
			Requirements: "4 years Python, Spark, SQL; teamwork",
		},
	)
}

// EngineOption adjusts the options of a test engine.
type EngineOption func(*engine.Options)

func WithSettings(settings *config.RankingSettings) EngineOption {
	return func(o *engine.Options) { o.Settings = settings }
}

// WithReadOnlySource replaces the writable memory source with a read-only view of it.
func WithReadOnlySource() EngineOption {
	return func(o *engine.Options) { o.Writer = nil }
}

// CreateTestEngine returns an engine over an in-memory corpus of docs, closed on cleanup.
func CreateTestEngine(t *testing.T, docs []model.Document, opts ...EngineOption) *engine.Engine {
	t.Helper()
	source := corpus.NewMemorySource(docs...)
	options := engine.Options{
		Source: source,
		Writer: source,
		Logger: zaptest.NewLogger(t),
	}
	for _, opt := range opts {
		opt(&options)
	}

	eng, err := engine.New(options)
	require.NoError(t, err, "Failed to create test engine")
	t.Cleanup(eng.Close)
	return eng
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 20 * time.Millisecond,
		LogProgress:  true,
	}
}

// WaitForJobCompletion polls a job until it finishes, failing the test if it fails or times out.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				if opts.LogProgress {
					t.Logf("Job %s completed in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended as %s: %s", jobID, job.Status, job.Error)
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s", jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// RankTestCase is one table entry for RunRankTests.
type RankTestCase struct {
	Name          string
	Request       services.RankRequest
	ExpectedCount int
	ExpectedFirst string // expected id of the best result, empty to skip
	ValidateFunc  func(t *testing.T, resp *services.RankResponse)
}

// RunRankTests runs each case against ranker as a subtest.
func RunRankTests(t *testing.T, ranker services.Ranker, tests []RankTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			resp, err := ranker.Rank(context.Background(), tt.Request)
			require.NoError(t, err, "Rank should not fail")

			assert.Equal(t, tt.ExpectedCount, resp.Total, "Result count should match")
			assert.Len(t, resp.Results, resp.Total)
			if tt.ExpectedFirst != "" && len(resp.Results) > 0 {
				assert.Equal(t, tt.ExpectedFirst, resp.Results[0].DocumentID, "First result should match expected")
			}
			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, resp)
			}
		})
	}
}

// IntPtr and FloatPtr build optional request fields.
func IntPtr(v int) *int           { return &v }
func FloatPtr(v float64) *float64 { return &v }
