// Package index builds the lexical model of a corpus snapshot: a TF-IDF vector space
// for cosine similarity and per-document term statistics for BM25 scoring.
//
// An Index is built once from a fixed list of texts and never mutated afterwards,
// so any number of goroutines may score against it without locking.
package index

import (
	"fmt"
	"math"
	"sort"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/internal/tokenizer"
)

const (
	DefaultK1              = 1.5
	DefaultB               = 0.75
	DefaultMinDocFreq      = 1
	DefaultMaxDocFreqRatio = 1.0
)

// Options configures index construction.
type Options struct {
	Analyzer        *tokenizer.Analyzer // nil uses stop words + bigrams, no stemming
	MinDocFreq      int                 // terms in fewer documents are dropped from the vector space
	MaxDocFreqRatio float64             // terms in a larger share of documents are dropped from the vector space
	K1              float64             // BM25 term-frequency saturation
	B               float64             // BM25 length normalization
}

func (o *Options) applyDefaults() {
	if o.Analyzer == nil {
		o.Analyzer = tokenizer.NewAnalyzer(tokenizer.Options{
			Stopwords: tokenizer.DefaultStopwords(),
			MaxNGram:  2,
		})
	}
	if o.MinDocFreq <= 0 {
		o.MinDocFreq = DefaultMinDocFreq
	}
	if o.MaxDocFreqRatio <= 0 || o.MaxDocFreqRatio > 1 {
		o.MaxDocFreqRatio = DefaultMaxDocFreqRatio
	}
	if o.K1 <= 0 {
		o.K1 = DefaultK1
	}
	if o.B < 0 || o.B > 1 {
		o.B = DefaultB
	}
}

// Index is the fitted lexical model of one corpus snapshot.
type Index struct {
	analyzer *tokenizer.Analyzer
	k1       float64
	b        float64
	numDocs  int

	// TF-IDF vector space
	vocabulary map[string]int // term -> term id
	terms      []string       // term id -> term
	idf        []float64      // term id -> smoothed idf
	docVectors []SparseVector // unit-length TF-IDF vector per document

	// BM25 statistics over unigram terms
	bm25DocFreq  map[string]int
	docTermFreqs []map[string]int
	docLengths   []int
	avgDocLength float64
	selfScores   []float64 // raw BM25 of each document scored against its own terms
}

// Build tokenizes texts and fits both models. It fails with an EmptyCorpusError when texts is empty.
func Build(texts []string, opts Options) (*Index, error) {
	if len(texts) == 0 {
		return nil, internalErrors.NewEmptyCorpusError()
	}
	opts.applyDefaults()

	idx := &Index{
		analyzer:     opts.Analyzer,
		k1:           opts.K1,
		b:            opts.B,
		numDocs:      len(texts),
		vocabulary:   make(map[string]int),
		bm25DocFreq:  make(map[string]int),
		docTermFreqs: make([]map[string]int, len(texts)),
		docLengths:   make([]int, len(texts)),
		docVectors:   make([]SparseVector, len(texts)),
		selfScores:   make([]float64, len(texts)),
	}

	features := make([]map[string]int, len(texts))
	featureDocFreq := make(map[string]int)
	totalLength := 0

	for i, text := range texts {
		features[i] = countTerms(idx.analyzer.Features(text))
		for term := range features[i] {
			featureDocFreq[term]++
		}

		unigrams := idx.analyzer.Terms(text)
		idx.docTermFreqs[i] = countTerms(unigrams)
		idx.docLengths[i] = len(unigrams)
		totalLength += len(unigrams)
		for term := range idx.docTermFreqs[i] {
			idx.bm25DocFreq[term]++
		}
	}
	idx.avgDocLength = float64(totalLength) / float64(len(texts))

	idx.buildVocabulary(featureDocFreq, opts.MinDocFreq, opts.MaxDocFreqRatio)

	for i := range texts {
		counts := make(map[int]int, len(features[i]))
		for term, count := range features[i] {
			if termID, ok := idx.vocabulary[term]; ok {
				counts[termID] = count
			}
		}
		vec := newSparseVector(counts, idx.termWeight)
		vec.Normalize()
		idx.docVectors[i] = vec

		idx.selfScores[i] = idx.bm25(sortedKeys(idx.docTermFreqs[i]), i)
	}

	return idx, nil
}

// buildVocabulary assigns term ids in lexical order to terms that pass the document-frequency cutoffs.
func (idx *Index) buildVocabulary(docFreq map[string]int, minDocFreq int, maxDocFreqRatio float64) {
	maxDocFreq := maxDocFreqRatio * float64(idx.numDocs)

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < minDocFreq || float64(df) > maxDocFreq {
			continue
		}
		kept = append(kept, term)
	}
	sort.Strings(kept)

	idx.terms = kept
	idx.idf = make([]float64, len(kept))
	for termID, term := range kept {
		idx.vocabulary[term] = termID
		// Smoothed idf: ln((1+n)/(1+df)) + 1 keeps every weight positive
		idx.idf[termID] = math.Log(float64(1+idx.numDocs)/float64(1+docFreq[term])) + 1
	}
}

func (idx *Index) termWeight(termID int) float64 {
	return idx.idf[termID]
}

// NumDocs returns the number of documents the index was built from.
func (idx *Index) NumDocs() int {
	return idx.numDocs
}

// VocabularySize returns the number of terms in the TF-IDF vector space.
func (idx *Index) VocabularySize() int {
	return len(idx.terms)
}

// HasTerm reports whether a term (unigram or "w1 w2" bigram) survived the document-frequency cutoffs.
func (idx *Index) HasTerm(term string) bool {
	_, ok := idx.vocabulary[term]
	return ok
}

// IDF returns the smoothed inverse document frequency of a vocabulary term, or 0 if it is unknown.
func (idx *Index) IDF(term string) float64 {
	termID, ok := idx.vocabulary[term]
	if !ok {
		return 0
	}
	return idx.idf[termID]
}

// AverageDocLength returns the mean number of unigram terms per document.
func (idx *Index) AverageDocLength() float64 {
	return idx.avgDocLength
}

func (idx *Index) checkDoc(doc int) error {
	if doc < 0 || doc >= idx.numDocs {
		return fmt.Errorf("document index %d out of range [0, %d)", doc, idx.numDocs)
	}
	return nil
}

func countTerms(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	return counts
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
