package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/jobmatch/config"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/model"
)

func sampleDocuments() []model.Document {
	return []model.Document{
		{
			ID:           "job-frontend",
			Name:         "Frontend Engineer",
			Position:     "Senior",
			Description:  "Build user interfaces with React and TypeScript",
			Requirements: "5+ years of React, strong communication",
			Location:     "Lisbon",
			Salary:       &model.SalaryRange{Min: 50000, Max: 70000, Currency: "EUR"},
		},
		{
			ID:           "job-data",
			Name:         "Data Engineer",
			Position:     "Mid-level",
			Description:  "Design data pipelines in Python and SQL",
			Requirements: "3 years with Python, SQL and Airflow",
		},
		{
			ID:           "job-designer",
			Name:         "Product Designer",
			Position:     "Junior",
			Description:  "Craft product experiences in Figma",
			Requirements: "Portfolio and teamwork",
		},
	}
}

func TestBuildSnapshot(t *testing.T) {
	snap, err := BuildSnapshot(context.Background(), sampleDocuments(), nil, 7)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, uint64(7), snap.Version())
	assert.NotEmpty(t, snap.ID())
	assert.Equal(t, "job-data", snap.DocumentID(1))
	assert.Equal(t, "Data Engineer", snap.Document(1).Name)
	require.NotNil(t, snap.LexicalIndex())
	assert.Equal(t, 3, snap.LexicalIndex().NumDocs())

	assert.True(t, snap.DocumentProfile(0).Technical.Contains("react"))
	assert.True(t, snap.DocumentProfile(1).Technical.Contains("python"))
	assert.True(t, snap.DocumentProfile(2).Technical.Contains("figma"))

	info := snap.Info()
	assert.Equal(t, 3, info.DocumentCount)
	assert.Positive(t, info.VocabularySize)
	assert.False(t, info.Stale)
	assert.NotEmpty(t, info.BuiltAt)
}

func TestBuildSnapshot_CopiesInput(t *testing.T) {
	docs := sampleDocuments()
	snap, err := BuildSnapshot(context.Background(), docs, nil, 1)
	require.NoError(t, err)

	docs[0].Name = "Changed"
	assert.Equal(t, "Frontend Engineer", snap.Document(0).Name)

	out := snap.Documents()
	out[1].Name = "Changed"
	assert.Equal(t, "Data Engineer", snap.Document(1).Name)
}

func TestBuildSnapshot_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := BuildSnapshot(ctx, nil, nil, 1)
	assert.True(t, errors.Is(err, internalErrors.ErrEmptyCorpus), "got %v", err)

	dup := append(sampleDocuments(), model.Document{ID: "job-data", Name: "Again"})
	_, err = BuildSnapshot(ctx, dup, nil, 1)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput), "got %v", err)

	missing := []model.Document{{Name: "No id"}}
	_, err = BuildSnapshot(ctx, missing, nil, 1)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput), "got %v", err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = BuildSnapshot(cancelled, sampleDocuments(), nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSnapshot_Settings(t *testing.T) {
	settings := config.DefaultRankingSettings()
	settings.Analyzer.MaxNGram = 1
	settings.BuildWorkers = 1

	unigram, err := BuildSnapshot(context.Background(), sampleDocuments(), settings, 1)
	require.NoError(t, err)
	bigram, err := BuildSnapshot(context.Background(), sampleDocuments(), nil, 1)
	require.NoError(t, err)

	assert.Less(t, unigram.LexicalIndex().VocabularySize(), bigram.LexicalIndex().VocabularySize())
	assert.False(t, unigram.LexicalIndex().HasTerm("data engineer"))
	assert.True(t, bigram.LexicalIndex().HasTerm("data engineer"))
}

func TestEmptySnapshot(t *testing.T) {
	snap := newEmptySnapshot(3)
	assert.Equal(t, 0, snap.Len())
	assert.Nil(t, snap.LexicalIndex())
	assert.Equal(t, 0, snap.Info().VocabularySize)

	var nilSnap *Snapshot
	assert.Equal(t, 0, nilSnap.Len())
	assert.Nil(t, nilSnap.Documents())
}
