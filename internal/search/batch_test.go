package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
)

func TestRankBatch(t *testing.T) {
	corpus := newTestCorpus(t, scenarioDocs)
	scorer := newTestScorer(t)

	result, err := RankBatch(context.Background(), scorer, []NamedQuery{
		{Name: "backend", Text: scenarioQuery},
		{Name: "designer", Text: "UX designer fluent in Figma with 4 years designing interfaces"},
	}, corpus, 5, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalQueries)
	require.Len(t, result.Results, 2)
	require.NotEmpty(t, result.Results["backend"])
	require.NotEmpty(t, result.Results["designer"])
	assert.Equal(t, "A", result.Results["backend"][0].DocumentID)
	assert.Equal(t, "B", result.Results["designer"][0].DocumentID)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, 0.0)

	single, err := Rank(context.Background(), scorer, scenarioQuery, corpus, 5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, single, result.Results["backend"], "batch results must match single ranking")
}

func TestRankBatch_Validation(t *testing.T) {
	corpus := newTestCorpus(t, scenarioDocs)
	scorer := newTestScorer(t)

	tests := []struct {
		name    string
		queries []NamedQuery
	}{
		{"no queries", nil},
		{"missing name", []NamedQuery{{Text: scenarioQuery}}},
		{"duplicate names", []NamedQuery{{Name: "q", Text: "python"}, {Name: "q", Text: "sql"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RankBatch(context.Background(), scorer, tt.queries, corpus, 5, 0.1)
			assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput), "got %v", err)
		})
	}

	t.Run("empty query text fails the batch", func(t *testing.T) {
		_, err := RankBatch(context.Background(), scorer, []NamedQuery{
			{Name: "ok", Text: scenarioQuery},
			{Name: "blank", Text: " "},
		}, corpus, 5, 0.1)
		assert.ErrorIs(t, err, internalErrors.ErrEmptyQuery)
	})
}
