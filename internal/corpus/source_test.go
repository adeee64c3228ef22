package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/jobmatch/config"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/model"
)

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	source := NewMemorySource(sampleDocuments()...)

	docs, err := source.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"job-data", "job-designer", "job-frontend"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})

	n, err := source.Upsert(ctx, []model.Document{{ID: "job-data", Name: "Analytics Engineer"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err = source.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
	assert.Equal(t, "Analytics Engineer", docs[0].Name)
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	source := NewFileSource(filepath.Join(t.TempDir(), "corpus.gob"))

	docs, err := source.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "a missing file is an empty corpus")

	_, err = source.Upsert(ctx, sampleDocuments())
	require.NoError(t, err)
	_, err = source.Upsert(ctx, []model.Document{{ID: "job-extra", Name: "SRE"}})
	require.NoError(t, err)

	docs, err = NewFileSource(source.Path()).FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 4)
	assert.Equal(t, "job-data", docs[0].ID)
	require.NotNil(t, docs[3].Salary)
	assert.Equal(t, "EUR", docs[3].Salary.Currency)
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	source, err := NewSQLiteSource(filepath.Join(t.TempDir(), "jobs.db"), "jobs")
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Close() })

	n, err := source.Upsert(ctx, sampleDocuments())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	updated := sampleDocuments()[0]
	updated.Requirements = "React and GraphQL"
	_, err = source.Upsert(ctx, []model.Document{updated})
	require.NoError(t, err)

	docs, err := source.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	byID := map[string]model.Document{}
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	frontend := byID["job-frontend"]
	assert.Equal(t, "React and GraphQL", frontend.Requirements)
	require.NotNil(t, frontend.Salary)
	assert.Equal(t, 50000.0, frontend.Salary.Min)
	assert.Nil(t, byID["job-data"].Salary)
}

func TestPostgresSource(t *testing.T) {
	assert.Contains(t, selectJobsSQL("jobs"), `FROM "jobs" ORDER BY id`)
	assert.Contains(t, selectJobsSQL(`bad"name`), `FROM "bad""name"`)

	dsn := os.Getenv("JOBMATCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("JOBMATCH_TEST_POSTGRES_DSN not set")
	}
	source, err := NewPostgresSource(context.Background(), dsn, "jobs")
	require.NoError(t, err)
	defer source.Close()

	_, err = source.FetchAll(context.Background())
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	src, writer, closeFn, err := Open(ctx, config.CorpusSettings{Source: config.SourceMemory})
	require.NoError(t, err)
	assert.NotNil(t, src)
	assert.NotNil(t, writer)
	assert.NoError(t, closeFn())

	src, _, closeFn, err = Open(ctx, config.CorpusSettings{Source: config.SourceSQLite, Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSource{}, src)
	assert.NoError(t, closeFn())

	_, _, _, err = Open(ctx, config.CorpusSettings{Source: "s3"})
	assert.ErrorIs(t, err, internalErrors.ErrInvalidSettings)
}

func TestDecodeDocuments(t *testing.T) {
	docs, err := DecodeDocuments(strings.NewReader(`[
		{"id": "a", "name": "Go Developer", "requirements": "Go, Docker"},
		{"id": "b", "name": "QA", "salary": {"min": 1, "max": 2}}
	]`))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Go, Docker", docs[0].Requirements)
	assert.Equal(t, 2.0, docs[1].Salary.Max)

	_, err = DecodeDocuments(strings.NewReader(`[{"id": "a"}]`))
	require.ErrorIs(t, err, internalErrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "documents[0].Name")

	_, err = DecodeDocuments(strings.NewReader(`{"id": "a"}`))
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}
