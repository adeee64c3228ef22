// Package search ranks corpus documents against a query text.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/scoring"
	"github.com/gcbaptista/jobmatch/model"
)

// Rank scores every document of snapshot against queryText and returns at most topN results
// whose overall score is strictly above minScore, best first. Equal scores are ordered by
// ascending document id.
//
// Blank queries fail with ErrEmptyQuery. An empty or nil snapshot, or topN <= 0, yields an
// empty slice. Cancellation is checked between documents; shared state is never written.
func Rank(ctx context.Context, scorer *scoring.Scorer, queryText string, snapshot Corpus, topN int, minScore float64) ([]model.RankedResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, internalErrors.ErrEmptyQuery
	}
	if isEmpty(snapshot) || topN <= 0 {
		return []model.RankedResult{}, nil
	}

	q, err := scorer.PrepareQuery(queryText, snapshot.LexicalIndex())
	if err != nil {
		return nil, err
	}
	return rankPrepared(ctx, scorer, q, snapshot, topN, minScore)
}

func rankPrepared(ctx context.Context, scorer *scoring.Scorer, q *scoring.Query, snapshot Corpus, topN int, minScore float64) ([]model.RankedResult, error) {
	n := snapshot.Len()
	hits := make([]candidateHit, 0, n)
	for doc := 0; doc < n; doc++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ranking cancelled: %w", err)
		}
		scores := scorer.Score(q, snapshot, doc)
		if scores.OverallMatch <= minScore {
			continue
		}
		hits = append(hits, candidateHit{doc: doc, id: snapshot.DocumentID(doc), scores: scores})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].scores.OverallMatch != hits[j].scores.OverallMatch {
			return hits[i].scores.OverallMatch > hits[j].scores.OverallMatch
		}
		return hits[i].id < hits[j].id
	})
	if len(hits) > topN {
		hits = hits[:topN]
	}

	results := make([]model.RankedResult, len(hits))
	for i, hit := range hits {
		results[i] = buildResult(scorer, q, snapshot, hit, i+1)
	}
	return results, nil
}

func buildResult(scorer *scoring.Scorer, q *scoring.Query, snapshot Corpus, hit candidateHit, position int) model.RankedResult {
	doc := snapshot.Document(hit.doc)
	match := scorer.Explain(q, snapshot.DocumentProfile(hit.doc))
	return model.RankedResult{
		DocumentID:             hit.id,
		Position:               position,
		Scores:                 hit.scores,
		Name:                   doc.Name,
		JobPosition:            doc.Position,
		Description:            doc.Description,
		Requirements:           doc.Requirements,
		Location:               doc.Location,
		Salary:                 doc.Salary,
		MatchedTechnicalSkills: match.Technical,
		MatchedSoftSkills:      match.Soft,
		MissingTechnicalSkills: match.MissingTechnical,
	}
}

func isEmpty(snapshot Corpus) (empty bool) {
	if snapshot == nil {
		return true
	}
	// typed nil snapshots may panic on Len
	defer func() {
		if recover() != nil {
			empty = true
		}
	}()
	return snapshot.Len() == 0
}
