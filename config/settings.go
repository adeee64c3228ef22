// Package config provides configuration structures for the ranking engine.
// It defines ranking settings, weighting schemes, and server options.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
)

// Weighting scheme names. The scheme is chosen once when the scorer is built.
const (
	SchemeFiveSignalWeighted  = "five-signal-weighted"
	SchemeSkillsSemanticSplit = "skills-semantic-split"
	SchemeCustom              = "custom"
)

const (
	DefaultTopN = 5
	// DefaultMinScore guards against degenerate pairs and is not a relevance cut. Under
	// five-signal-weighted a posting that requires nothing extractable scores NeutralBaseline
	// (0.325) against any query, so callers wanting a relevance cut should set min-score above it.
	DefaultMinScore         = 0.1
	DefaultNeutralSkill     = 0.5
	DefaultExtraSkillBonus  = 0.05
	DefaultExtraSkillCap    = 0.2
	DefaultSigmoidSteepness = 5.0
	DefaultMaxNGram         = 2
	DefaultBM25K1           = 1.5
	DefaultBM25B            = 0.75

	// NeutralBaseline is the five-signal-weighted score of a pair with no lexical overlap where
	// the posting requires nothing: neutral 0.5 on both skill signals and full experience credit.
	NeutralBaseline = 0.5*(0.2+0.15) + 0.15

	// weightSumTolerance absorbs decimal literals like 0.15 that are not exact in binary.
	weightSumTolerance = 1e-9
)

// Weights assigns a share of the overall score to each signal. The shares must sum to 1.
type Weights struct {
	Semantic   float64 `json:"semantic" mapstructure:"semantic" validate:"gte=0,lte=1"`     // TF-IDF cosine similarity
	Contextual float64 `json:"contextual" mapstructure:"contextual" validate:"gte=0,lte=1"` // normalized BM25
	Technical  float64 `json:"technical" mapstructure:"technical" validate:"gte=0,lte=1"`
	SoftSkills float64 `json:"soft_skills" mapstructure:"soft-skills" validate:"gte=0,lte=1"`
	Experience float64 `json:"experience" mapstructure:"experience" validate:"gte=0,lte=1"`
}

// Sum returns the total of all shares.
func (w Weights) Sum() float64 {
	return w.Semantic + w.Contextual + w.Technical + w.SoftSkills + w.Experience
}

// SchemeWeights returns the fixed weights of a named scheme.
func SchemeWeights(scheme string) (Weights, bool) {
	switch scheme {
	case SchemeFiveSignalWeighted:
		return Weights{Semantic: 0.3, Contextual: 0.2, Technical: 0.2, SoftSkills: 0.15, Experience: 0.15}, true
	case SchemeSkillsSemanticSplit:
		return Weights{Semantic: 0.6, Technical: 0.4}, true
	default:
		return Weights{}, false
	}
}

// SigmoidSettings controls the optional squashing of the combined score.
// When enabled, overall = 1 / (1 + e^(-k*(raw-0.5))), which moves scores toward 0.5
// and changes what a given threshold means.
type SigmoidSettings struct {
	Enabled   bool    `json:"enabled" mapstructure:"enabled"`
	Steepness float64 `json:"steepness" mapstructure:"steepness" validate:"gte=0"`
}

// AnalyzerSettings controls how texts are turned into index terms.
type AnalyzerSettings struct {
	KeepStopwords   bool    `json:"keep_stopwords" mapstructure:"keep-stopwords"`
	Stem            bool    `json:"stem" mapstructure:"stem"`
	MaxNGram        int     `json:"max_ngram" mapstructure:"max-ngram" validate:"gte=1,lte=3"`
	MinDocFreq      int     `json:"min_doc_freq" mapstructure:"min-doc-freq" validate:"gte=1"`
	MaxDocFreqRatio float64 `json:"max_doc_freq_ratio" mapstructure:"max-doc-freq-ratio" validate:"gt=0,lte=1"`
}

// BM25Settings holds the probabilistic model parameters.
type BM25Settings struct {
	K1 float64 `json:"k1" mapstructure:"k1" validate:"gt=0"`
	B  *float64 `json:"b,omitempty" mapstructure:"b" validate:"omitempty,gte=0,lte=1"` // nil means DefaultBM25B; 0 disables length normalization
}

// LengthNormalization returns b, or the default when it is unset.
func (s BM25Settings) LengthNormalization() float64 {
	return valueOr(s.B, DefaultBM25B)
}

// SkillSettings tunes skill overlap scoring.
type SkillSettings struct {
	NeutralScore    *float64 `json:"neutral_score,omitempty" mapstructure:"neutral-score" validate:"omitempty,gte=0,lte=1"`         // score when the posting lists no skills
	ExtraSkillBonus *float64 `json:"extra_skill_bonus,omitempty" mapstructure:"extra-skill-bonus" validate:"omitempty,gte=0,lte=1"` // bonus per candidate skill beyond the requirements
	ExtraSkillCap   float64  `json:"extra_skill_cap" mapstructure:"extra-skill-cap" validate:"gte=0,lte=1"`                         // bonus cap, as a fraction of the base score
	Floor           float64  `json:"floor" mapstructure:"floor" validate:"gte=0,lt=1"`                                              // lower bound of the skill score whenever skills are required
}

// Neutral returns the neutral score, or the default when it is unset.
func (s SkillSettings) Neutral() float64 {
	return valueOr(s.NeutralScore, DefaultNeutralSkill)
}

// BonusPerExtra returns the extra-skill bonus, or the default when it is unset.
func (s SkillSettings) BonusPerExtra() float64 {
	return valueOr(s.ExtraSkillBonus, DefaultExtraSkillBonus)
}

// RankingSettings contains every option that influences scores and ranking.
type RankingSettings struct {
	WeightingScheme string           `json:"weighting_scheme" mapstructure:"weighting-scheme" validate:"required,oneof=five-signal-weighted skills-semantic-split custom"`
	Weights         *Weights         `json:"weights,omitempty" mapstructure:"weights"` // required for the custom scheme, derived otherwise
	Sigmoid         SigmoidSettings  `json:"sigmoid" mapstructure:"sigmoid"`
	Analyzer        AnalyzerSettings `json:"analyzer" mapstructure:"analyzer"`
	BM25            BM25Settings     `json:"bm25" mapstructure:"bm25"`
	Skills          SkillSettings    `json:"skills" mapstructure:"skills"`
	TopN            int              `json:"top_n" mapstructure:"top-n" validate:"gte=1"`
	MinScore        *float64         `json:"min_score,omitempty" mapstructure:"min-score" validate:"omitempty,gte=0,lt=1"` // nil means DefaultMinScore; 0 keeps every positive score
	BuildWorkers    int              `json:"build_workers" mapstructure:"build-workers" validate:"gte=0"` // 0 means one per CPU
}

// Threshold returns the minimum overall score, or DefaultMinScore when it is unset.
func (settings *RankingSettings) Threshold() float64 {
	return valueOr(settings.MinScore, DefaultMinScore)
}

// Clone returns a copy that shares no pointers with settings.
func (settings *RankingSettings) Clone() *RankingSettings {
	copied := *settings
	copied.Weights = clonePtr(settings.Weights)
	copied.BM25.B = clonePtr(settings.BM25.B)
	copied.Skills.NeutralScore = clonePtr(settings.Skills.NeutralScore)
	copied.Skills.ExtraSkillBonus = clonePtr(settings.Skills.ExtraSkillBonus)
	copied.MinScore = clonePtr(settings.MinScore)
	return &copied
}

// DefaultRankingSettings returns settings for the five-signal scheme with all defaults applied.
func DefaultRankingSettings() *RankingSettings {
	settings := &RankingSettings{WeightingScheme: SchemeFiveSignalWeighted}
	settings.ApplyDefaults()
	return settings
}

// ApplyDefaults fills unset values with defaults. Settings where zero is meaningful
// (bm25 b, min score, neutral skill score, extra-skill bonus) are pointers, so an explicit 0
// survives. Weights of a named scheme always replace whatever was configured.
func (settings *RankingSettings) ApplyDefaults() {
	if settings.WeightingScheme == "" {
		settings.WeightingScheme = SchemeFiveSignalWeighted
	}
	settings.WeightingScheme = strings.ToLower(strings.TrimSpace(settings.WeightingScheme))
	if w, ok := SchemeWeights(settings.WeightingScheme); ok {
		settings.Weights = &w
	}

	if settings.Sigmoid.Steepness == 0 {
		settings.Sigmoid.Steepness = DefaultSigmoidSteepness
	}

	if settings.Analyzer.MaxNGram == 0 {
		settings.Analyzer.MaxNGram = DefaultMaxNGram
	}
	if settings.Analyzer.MinDocFreq == 0 {
		settings.Analyzer.MinDocFreq = 1
	}
	if settings.Analyzer.MaxDocFreqRatio == 0 {
		settings.Analyzer.MaxDocFreqRatio = 1.0
	}

	if settings.BM25.K1 == 0 {
		settings.BM25.K1 = DefaultBM25K1
	}
	if settings.BM25.B == nil {
		settings.BM25.B = ptr(DefaultBM25B)
	}

	if settings.Skills.NeutralScore == nil {
		settings.Skills.NeutralScore = ptr(DefaultNeutralSkill)
	}
	if settings.Skills.ExtraSkillBonus == nil {
		settings.Skills.ExtraSkillBonus = ptr(DefaultExtraSkillBonus)
	}
	if settings.Skills.ExtraSkillCap == 0 {
		settings.Skills.ExtraSkillCap = DefaultExtraSkillCap
	}

	if settings.TopN == 0 {
		settings.TopN = DefaultTopN
	}
	if settings.MinScore == nil {
		settings.MinScore = ptr(DefaultMinScore)
	}
}

// Validate checks field bounds and the weight-sum rule. Failures are ValidationErrors
// naming the first offending field.
func (settings *RankingSettings) Validate() error {
	if err := validator.New().Struct(settings); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return internalErrors.NewValidationError(fe.Namespace(), fmt.Sprintf("failed '%s' constraint (value: %v)", fe.Tag(), fe.Value()))
		}
		return internalErrors.NewValidationError("settings", err.Error())
	}
	if settings.Weights == nil {
		return internalErrors.NewValidationError("weights", fmt.Sprintf("required for the '%s' scheme", settings.WeightingScheme))
	}
	if sum := settings.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return internalErrors.NewValidationError("weights", fmt.Sprintf("shares sum to %.6f, must sum to 1", sum))
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
