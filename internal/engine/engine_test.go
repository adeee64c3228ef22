package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/internal/engine"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/search"
	jmtesting "github.com/gcbaptista/jobmatch/internal/testing"
	"github.com/gcbaptista/jobmatch/model"
	"github.com/gcbaptista/jobmatch/services"
)

func TestEngine_New(t *testing.T) {
	_, err := engine.New(engine.Options{})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput, "a source is required")

	settings := &config.RankingSettings{WeightingScheme: config.SchemeCustom}
	_, err = engine.New(engine.Options{Source: &staticSource{}, Settings: settings})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidSettings, "custom scheme without weights")
}

func TestEngine_RankScenario(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs())

	jmtesting.RunRankTests(t, eng, []jmtesting.RankTestCase{
		{
			Name:          "backend resume prefers backend posting",
			Request:       services.RankRequest{Query: jmtesting.BackendResume},
			ExpectedCount: 2,
			ExpectedFirst: "A",
			ValidateFunc: func(t *testing.T, resp *services.RankResponse) {
				a, b := resp.Results[0], resp.Results[1]
				assert.Equal(t, 1.0, a.Scores.TechnicalMatch)
				assert.Equal(t, 0.0, b.Scores.TechnicalMatch)
				assert.Greater(t, a.Scores.OverallMatch, b.Scores.OverallMatch)
				assert.Equal(t, []string{"python", "sql"}, a.MatchedTechnicalSkills)
				assert.Equal(t, 1, a.Position)
				assert.Equal(t, "Backend Engineer", a.Name)
				assert.Equal(t, config.SchemeFiveSignalWeighted, resp.Scheme)
				assert.Equal(t, config.DefaultTopN, resp.TopN)
				assert.NotEmpty(t, resp.QueryID)
				assert.Equal(t, uint64(1), resp.Snapshot)
			},
		},
		{
			Name:          "top n override",
			Request:       services.RankRequest{Query: jmtesting.BackendResume, TopN: jmtesting.IntPtr(1)},
			ExpectedCount: 1,
			ExpectedFirst: "A",
		},
		{
			Name:          "zero top n",
			Request:       services.RankRequest{Query: jmtesting.BackendResume, TopN: jmtesting.IntPtr(0)},
			ExpectedCount: 0,
		},
		{
			Name:          "threshold above every score",
			Request:       services.RankRequest{Query: jmtesting.BackendResume, MinScore: jmtesting.FloatPtr(0.99)},
			ExpectedCount: 0,
		},
	})
}

func TestEngine_RankErrors(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs())
	ctx := context.Background()

	_, err := eng.Rank(ctx, services.RankRequest{Query: "   "})
	assert.ErrorIs(t, err, internalErrors.ErrEmptyQuery)

	_, err = eng.Rank(ctx, services.RankRequest{Query: "python", TopN: jmtesting.IntPtr(-1)})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)

	_, err = eng.Rank(ctx, services.RankRequest{Query: "python", MinScore: jmtesting.FloatPtr(1.5)})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestEngine_RankFile(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.SampleJobs())
	ctx := context.Background()

	resp, err := eng.RankFile(ctx, services.FileRankRequest{
		Content:  []byte("<html><body><h1>Frontend</h1><p>Senior developer, 6 years React and TypeScript</p></body></html>"),
		FileType: "text/html",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "C", resp.Results[0].DocumentID)

	_, err = eng.RankFile(ctx, services.FileRankRequest{Content: []byte("%PDF"), FileType: "pdf"})
	assert.ErrorIs(t, err, internalErrors.ErrUnsupportedFileType)

	_, err = eng.RankFile(ctx, services.FileRankRequest{Content: []byte("  "), FileType: "txt"})
	assert.ErrorIs(t, err, internalErrors.ErrExtraction)
}

func TestEngine_RankBatch(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.SampleJobs())
	ctx := context.Background()

	resp, err := eng.RankBatch(ctx, services.BatchRankRequest{
		Queries: []search.NamedQuery{
			{Name: "backend", Text: jmtesting.BackendResume},
			{Name: "frontend", Text: "React and TypeScript developer"},
		},
		TopN: jmtesting.IntPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalQueries)
	assert.Equal(t, uint64(1), resp.Snapshot)
	require.NotEmpty(t, resp.Results["frontend"])
	assert.Equal(t, "C", resp.Results["frontend"][0].DocumentID)
	assert.LessOrEqual(t, len(resp.Results["backend"]), 2)

	single, err := eng.Rank(ctx, services.RankRequest{Query: jmtesting.BackendResume, TopN: jmtesting.IntPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, single.Results, resp.Results["backend"])

	_, err = eng.RankBatch(ctx, services.BatchRankRequest{})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestEngine_SkillsSemanticSplit(t *testing.T) {
	settings := &config.RankingSettings{WeightingScheme: config.SchemeSkillsSemanticSplit}
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs(), jmtesting.WithSettings(settings))

	resp, err := eng.Rank(context.Background(), services.RankRequest{Query: jmtesting.BackendResume})
	require.NoError(t, err)
	assert.Equal(t, config.SchemeSkillsSemanticSplit, resp.Scheme)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "A", resp.Results[0].DocumentID)
	assert.Equal(t, config.SchemeSkillsSemanticSplit, eng.Settings().WeightingScheme)
}

func TestEngine_EmptyCorpus(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, nil)

	resp, err := eng.Rank(context.Background(), services.RankRequest{Query: jmtesting.BackendResume})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)

	info, err := eng.SnapshotInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, info.DocumentCount)
}

func TestEngine_ImportAsync(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs())
	ctx := context.Background()

	info, err := eng.Warmup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.DocumentCount)

	jobID, err := eng.ImportAsync([]model.Document{{
		ID:           "E",
		Name:         "Platform Engineer",
		Description:  "Operate Kubernetes and Terraform",
		Requirements: "Go, Kubernetes",
	}})
	require.NoError(t, err)

	job := jmtesting.WaitForJobCompletion(t, eng, jobID, jmtesting.DefaultJobPollingOptions())
	jmtesting.AssertJobCompleted(t, job, model.JobTypeImportCorpus)
	assert.Equal(t, 100.0, job.Progress.GetProgressPercentage())

	info, err = eng.SnapshotInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, info.DocumentCount)
	assert.Equal(t, uint64(2), info.Version)

	resp, err := eng.Rank(ctx, services.RankRequest{Query: "Kubernetes platform engineer"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "E", resp.Results[0].DocumentID)

	_, err = eng.ImportAsync(nil)
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestEngine_ConcurrentImportsAllVisible(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs())
	ctx := context.Background()

	_, err := eng.Warmup(ctx)
	require.NoError(t, err)

	var jobIDs []string
	for _, id := range []string{"E", "F", "G", "H"} {
		jobID, err := eng.ImportAsync([]model.Document{{
			ID:           id,
			Name:         "Platform Engineer " + id,
			Requirements: "Go, Kubernetes",
		}})
		require.NoError(t, err)
		jobIDs = append(jobIDs, jobID)
	}
	for _, jobID := range jobIDs {
		job := jmtesting.WaitForJobCompletion(t, eng, jobID, jmtesting.DefaultJobPollingOptions())
		jmtesting.AssertJobCompleted(t, job, model.JobTypeImportCorpus)
	}

	info, err := eng.SnapshotInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, info.DocumentCount)
}

func TestEngine_ImportReadOnly(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs(), jmtesting.WithReadOnlySource())

	_, err := eng.ImportAsync(jmtesting.SampleJobs())
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestEngine_RefreshAndInvalidate(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs())
	ctx := context.Background()

	_, err := eng.Warmup(ctx)
	require.NoError(t, err)

	jobID, err := eng.RefreshAsync()
	require.NoError(t, err)
	job, err := eng.WaitForJob(ctx, jobID)
	require.NoError(t, err)
	jmtesting.AssertJobCompleted(t, job, model.JobTypeRebuildSnapshot)

	info, err := eng.SnapshotInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Version)

	eng.Invalidate()
	require.Eventually(t, func() bool {
		info, err := eng.SnapshotInfo(ctx)
		return err == nil && info.Version == 3 && !info.Stale
	}, 2*time.Second, 10*time.Millisecond)

	completed := model.JobStatusCompleted
	assert.Len(t, eng.ListJobs(&completed), 1)
	assert.Equal(t, int64(1), eng.JobMetrics().JobsCompleted)

	_, err = eng.GetJob("missing")
	assert.ErrorIs(t, err, internalErrors.ErrJobNotFound)
}

func TestEngine_Analytics(t *testing.T) {
	eng := jmtesting.CreateTestEngine(t, jmtesting.ScenarioJobs())
	ctx := context.Background()

	_, err := eng.Rank(ctx, services.RankRequest{Query: jmtesting.BackendResume})
	require.NoError(t, err)
	_, err = eng.Rank(ctx, services.RankRequest{Query: jmtesting.BackendResume, MinScore: jmtesting.FloatPtr(0.99)})
	require.NoError(t, err)
	_, err = eng.RankFile(ctx, services.FileRankRequest{Content: []byte("Figma designer"), FileType: "txt"})
	require.NoError(t, err)

	summary := eng.Analytics()
	assert.Equal(t, 3, summary.TotalRequests)
	assert.Equal(t, 2, summary.Sources.Text)
	assert.Equal(t, 1, summary.Sources.File)
	assert.GreaterOrEqual(t, summary.ZeroResultRequests, 1)
	require.NotEmpty(t, summary.PopularDocuments)
	assert.Equal(t, "A", summary.PopularDocuments[0].DocumentID)
	assert.Equal(t, uint64(1), summary.LastSnapshotVersion)
}

type staticSource struct{}

func (staticSource) FetchAll(context.Context) ([]model.Document, error) {
	return jmtesting.ScenarioJobs(), nil
}
