// Package scoring turns a (query, document) pair into a ScoreBreakdown. Each signal is
// computed independently and a failing signal is degraded to 0 without affecting the
// others; the overall score is combined by the Strategy selected at construction time.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/gcbaptista/jobmatch/config"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/index"
	"github.com/gcbaptista/jobmatch/internal/features"
	"github.com/gcbaptista/jobmatch/internal/logging"
	"github.com/gcbaptista/jobmatch/model"
)

// Signal names, as they appear in the breakdown and in degradation logs.
const (
	SignalCosine     = "cosine_similarity"
	SignalBM25       = "bm25_score"
	SignalTechnical  = "technical_match"
	SignalSoftSkills = "soft_skills_match"
	SignalExperience = "experience_match"
)

// Target is the scored side of a pair: a corpus snapshot with a fitted index and
// per-document feature profiles.
type Target interface {
	LexicalIndex() *index.Index
	DocumentID(doc int) string
	DocumentProfile(doc int) features.Profile
}

// Query is a query text analyzed once for scoring against every document of one Target.
type Query struct {
	Text    string
	Profile features.Profile

	lexical *index.Query
	index   *index.Index
}

// Scorer computes score breakdowns. It is immutable after construction and safe for concurrent use.
type Scorer struct {
	strategy  Strategy
	skills    SkillParams
	sigmoid   config.SigmoidSettings
	extractor *features.Extractor
	logger    *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the logger used to report degraded signals.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		s.logger = logging.OrNop(logger)
	}
}

// WithExtractor replaces the built-in feature vocabularies used for queries.
func WithExtractor(extractor *features.Extractor) Option {
	return func(s *Scorer) {
		if extractor != nil {
			s.extractor = extractor
		}
	}
}

// NewScorer validates settings and builds a scorer. Invalid settings return a ValidationError;
// callers treat that as fatal. A nil settings value uses the defaults.
func NewScorer(settings *config.RankingSettings, opts ...Option) (*Scorer, error) {
	if settings == nil {
		settings = config.DefaultRankingSettings()
	}
	resolved := *settings
	resolved.ApplyDefaults()
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	strategy, err := NewStrategy(resolved.WeightingScheme, resolved.Weights)
	if err != nil {
		return nil, err
	}

	s := &Scorer{
		strategy:  strategy,
		skills:    SkillParamsFromSettings(resolved.Skills),
		sigmoid:   resolved.Sigmoid,
		extractor: features.Default(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Strategy returns the weighting strategy in use.
func (s *Scorer) Strategy() Strategy {
	return s.strategy
}

// Extractor returns the feature extractor applied to query texts.
func (s *Scorer) Extractor() *features.Extractor {
	return s.extractor
}

// PrepareQuery analyzes text against idx. Blank text is rejected with ErrEmptyQuery.
func (s *Scorer) PrepareQuery(text string, idx *index.Index) (*Query, error) {
	if strings.TrimSpace(text) == "" {
		return nil, internalErrors.ErrEmptyQuery
	}
	q := &Query{
		Text:    text,
		Profile: s.extractor.Extract(text),
		index:   idx,
	}
	if idx != nil {
		q.lexical = idx.PrepareQuery(text)
	}
	return q, nil
}

// Score computes every signal for document doc of target and combines them.
// The result is a pure function of (query text, document, settings).
func (s *Scorer) Score(q *Query, target Target, doc int) model.ScoreBreakdown {
	docID := s.documentID(target, doc)
	idx := target.LexicalIndex()

	lexical := q.lexical
	if q.index != idx && idx != nil {
		lexical = idx.PrepareQuery(q.Text)
	}

	var b model.ScoreBreakdown
	b.CosineSimilarity = s.signal(SignalCosine, docID, func() (float64, error) {
		return idx.Cosine(lexical, doc)
	})
	b.BM25Score = s.signal(SignalBM25, docID, func() (float64, error) {
		return idx.BM25ScoreQuery(lexical, doc)
	})
	b.TechnicalMatch = s.signal(SignalTechnical, docID, func() (float64, error) {
		return SkillMatch(target.DocumentProfile(doc).Technical, q.Profile.Technical, s.skills), nil
	})
	b.SoftSkillsMatch = s.signal(SignalSoftSkills, docID, func() (float64, error) {
		return SkillMatch(target.DocumentProfile(doc).Soft, q.Profile.Soft, s.skills), nil
	})
	b.ExperienceMatch = s.signal(SignalExperience, docID, func() (float64, error) {
		return ExperienceMatch(target.DocumentProfile(doc).Experience, q.Profile.Experience), nil
	})

	b.OverallMatch = s.combine(b)
	return b
}

// combine applies the strategy and the optional sigmoid to an already computed breakdown.
func (s *Scorer) combine(b model.ScoreBreakdown) float64 {
	raw := s.strategy.Combine(b)
	if s.sigmoid.Enabled {
		raw = Squash(raw, s.sigmoid.Steepness)
	}
	return clampUnit(raw)
}

// signal runs compute and turns errors, panics and non-finite values into a logged 0.
func (s *Scorer) signal(name, docID string, compute func() (float64, error)) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.degrade(name, docID, fmt.Sprintf("panic: %v", r))
			score = 0
		}
	}()

	v, err := compute()
	if err != nil {
		s.degrade(name, docID, err.Error())
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.degrade(name, docID, "non-finite value")
		return 0
	}
	return clampUnit(v)
}

func (s *Scorer) degrade(name, docID, reason string) {
	s.logger.Warn("signal degraded",
		zap.Error(internalErrors.NewScoreComputationError(name, docID, reason)),
		zap.String("signal", name),
		zap.String("document_id", docID),
	)
}

func (s *Scorer) documentID(target Target, doc int) (id string) {
	defer func() {
		if recover() != nil {
			id = fmt.Sprintf("#%d", doc)
		}
	}()
	return target.DocumentID(doc)
}

// Match lists the skills a candidate shares with a posting and the required technical skills it lacks.
type Match struct {
	Technical        []string
	Soft             []string
	MissingTechnical []string
}

// Explain compares the query profile with a document profile.
func (s *Scorer) Explain(q *Query, profile features.Profile) Match {
	return Match{
		Technical:        profile.Technical.Intersect(q.Profile.Technical).Strings(),
		Soft:             profile.Soft.Intersect(q.Profile.Soft).Strings(),
		MissingTechnical: profile.Technical.Difference(q.Profile.Technical).Strings(),
	}
}
