package scoring

import (
	"fmt"

	"github.com/gcbaptista/jobmatch/config"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/model"
)

// Strategy combines the individual signals of a breakdown into the overall score.
type Strategy interface {
	Name() string
	Weights() config.Weights
	Combine(b model.ScoreBreakdown) float64
}

// weightedStrategy is a convex combination over all five signals.
type weightedStrategy struct {
	name    string
	weights config.Weights
}

func (s weightedStrategy) Name() string            { return s.name }
func (s weightedStrategy) Weights() config.Weights { return s.weights }

func (s weightedStrategy) Combine(b model.ScoreBreakdown) float64 {
	w := s.weights
	return w.Semantic*b.CosineSimilarity +
		w.Contextual*b.BM25Score +
		w.Technical*b.TechnicalMatch +
		w.SoftSkills*b.SoftSkillsMatch +
		w.Experience*b.ExperienceMatch
}

// splitStrategy only looks at technical skills and TF-IDF similarity.
type splitStrategy struct {
	technical float64
	semantic  float64
}

func (s splitStrategy) Name() string { return config.SchemeSkillsSemanticSplit }

func (s splitStrategy) Weights() config.Weights {
	return config.Weights{Technical: s.technical, Semantic: s.semantic}
}

func (s splitStrategy) Combine(b model.ScoreBreakdown) float64 {
	return s.technical*b.TechnicalMatch + s.semantic*b.CosineSimilarity
}

// NewStrategy returns the strategy for a weighting scheme. custom is only read for the custom scheme.
func NewStrategy(scheme string, custom *config.Weights) (Strategy, error) {
	switch scheme {
	case config.SchemeFiveSignalWeighted:
		w, _ := config.SchemeWeights(scheme)
		return weightedStrategy{name: scheme, weights: w}, nil
	case config.SchemeSkillsSemanticSplit:
		w, _ := config.SchemeWeights(scheme)
		return splitStrategy{technical: w.Technical, semantic: w.Semantic}, nil
	case config.SchemeCustom:
		if custom == nil {
			return nil, internalErrors.NewValidationError("weights", "required for the custom scheme")
		}
		return weightedStrategy{name: scheme, weights: *custom}, nil
	default:
		return nil, internalErrors.NewValidationError("weighting_scheme", fmt.Sprintf("unknown scheme '%s'", scheme))
	}
}
