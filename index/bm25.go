package index

import (
	"fmt"
	"math"
)

// bm25IDF returns the inverse document frequency of a unigram term.
// IDF = ln((N - df + 0.5) / (df + 0.5) + 1), which stays positive even for terms in every document.
func (idx *Index) bm25IDF(term string) float64 {
	docFreq := idx.bm25DocFreq[term]
	if docFreq == 0 {
		return 0.0
	}
	n := float64(idx.numDocs)
	df := float64(docFreq)
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

// bm25 sums the BM25 contribution of each term for one document.
// BM25 = IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * (|d| / avgdl)))
// terms must be sorted and unique so the sum is accumulated in a fixed order.
func (idx *Index) bm25(terms []string, doc int) float64 {
	lengthRatio := 0.0
	if idx.avgDocLength > 0 {
		lengthRatio = float64(idx.docLengths[doc]) / idx.avgDocLength
	}
	norm := idx.k1 * (1 - idx.b + idx.b*lengthRatio)

	score := 0.0
	for _, term := range terms {
		tf := float64(idx.docTermFreqs[doc][term])
		if tf == 0 {
			continue
		}
		score += idx.bm25IDF(term) * (tf * (idx.k1 + 1)) / (tf + norm)
	}
	return score
}

// RawBM25 returns the unnormalized Okapi BM25 score of queryText against document doc.
func (idx *Index) RawBM25(queryText string, doc int) (float64, error) {
	return idx.RawBM25Query(idx.PrepareQuery(queryText), doc)
}

// RawBM25Query is RawBM25 for a query already prepared against this index.
func (idx *Index) RawBM25Query(q *Query, doc int) (float64, error) {
	if err := idx.checkQuery(q, doc); err != nil {
		return 0, err
	}
	return idx.bm25(q.terms, doc), nil
}

// BM25Score returns the BM25 score of queryText against document doc, divided by the
// document's score against its own terms. The result lies in [0, 1] and a query that
// contains every term of the document scores 1.
func (idx *Index) BM25Score(queryText string, doc int) (float64, error) {
	return idx.BM25ScoreQuery(idx.PrepareQuery(queryText), doc)
}

// BM25ScoreQuery is BM25Score for a query already prepared against this index.
func (idx *Index) BM25ScoreQuery(q *Query, doc int) (float64, error) {
	raw, err := idx.RawBM25Query(q, doc)
	if err != nil {
		return 0, err
	}
	self := idx.selfScores[doc]
	if self == 0 {
		return 0, nil
	}
	score := raw / self
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("bm25 score for document %d is not finite", doc)
	}
	return clampUnit(score), nil
}
