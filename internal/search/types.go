package search

import (
	"github.com/gcbaptista/jobmatch/internal/scoring"
	"github.com/gcbaptista/jobmatch/model"
)

// Corpus is the ranked side of a request: a scoring target that also exposes its documents.
// A Corpus with Len 0 ranks to an empty result.
type Corpus interface {
	scoring.Target
	Len() int
	Document(doc int) model.Document
}

// candidateHit represents a document that passed the threshold during ranking
type candidateHit struct {
	doc    int
	id     string
	scores model.ScoreBreakdown
}

// NamedQuery is one entry of a batch request.
type NamedQuery struct {
	Name string `json:"name" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// BatchResult holds the rankings of a batch keyed by query name.
type BatchResult struct {
	Results          map[string][]model.RankedResult `json:"results"`
	TotalQueries     int                             `json:"total_queries"`
	ProcessingTimeMs float64                         `json:"processing_time_ms"`
}
