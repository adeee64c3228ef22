package index

import (
	"errors"
	"fmt"
	"math"
)

var errForeignQuery = errors.New("query was prepared against a different index")

// Query is a query text analyzed against one Index. It carries the unit-length TF-IDF
// vector and the sorted unique unigram terms, so a query is analyzed once and then
// scored against every document. A Query must not be used with another Index.
type Query struct {
	owner  *Index
	vector SparseVector
	terms  []string
}

// Terms returns the sorted unique unigram terms of the query.
func (q *Query) Terms() []string {
	return q.terms
}

// IsZero reports whether the query has no terms in the index vocabulary.
func (q *Query) IsZero() bool {
	return len(q.vector) == 0
}

// PrepareQuery analyzes queryText with the index's analyzer.
// Terms missing from the vocabulary are ignored.
func (idx *Index) PrepareQuery(queryText string) *Query {
	counts := make(map[int]int)
	for _, feature := range idx.analyzer.Features(queryText) {
		if termID, ok := idx.vocabulary[feature]; ok {
			counts[termID]++
		}
	}
	vec := newSparseVector(counts, idx.termWeight)
	vec.Normalize()

	return &Query{
		owner:  idx,
		vector: vec,
		terms:  sortedKeys(countTerms(idx.analyzer.Terms(queryText))),
	}
}

// CosineSimilarity returns the cosine of the angle between the TF-IDF vector of queryText
// and the vector of document doc. Zero-length vectors on either side score 0.
func (idx *Index) CosineSimilarity(queryText string, doc int) (float64, error) {
	return idx.Cosine(idx.PrepareQuery(queryText), doc)
}

// Cosine is CosineSimilarity for a query already prepared against this index.
func (idx *Index) Cosine(q *Query, doc int) (float64, error) {
	if err := idx.checkQuery(q, doc); err != nil {
		return 0, err
	}
	docVec := idx.docVectors[doc]
	if len(q.vector) == 0 || len(docVec) == 0 {
		return 0, nil
	}
	score := q.vector.Dot(docVec)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("cosine similarity for document %d is not finite", doc)
	}
	return clampUnit(score), nil
}

func (idx *Index) checkQuery(q *Query, doc int) error {
	if q == nil || q.owner != idx {
		return errForeignQuery
	}
	return idx.checkDoc(doc)
}

// clampUnit absorbs floating point drift just outside [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
