package scoring

import (
	"math"

	"github.com/gcbaptista/jobmatch/config"
	"github.com/gcbaptista/jobmatch/internal/features"
)

// SkillParams tunes SkillMatch.
type SkillParams struct {
	Neutral       float64 // returned when the posting requires no vocabulary skills
	BonusPerExtra float64 // added per candidate skill beyond the requirements, as a fraction of the base
	BonusCap      float64 // maximum total bonus, as a fraction of the base
	Floor         float64 // lower bound whenever the posting requires skills
}

// DefaultSkillParams returns the parameters used when nothing is configured.
func DefaultSkillParams() SkillParams {
	return SkillParams{
		Neutral:       config.DefaultNeutralSkill,
		BonusPerExtra: config.DefaultExtraSkillBonus,
		BonusCap:      config.DefaultExtraSkillCap,
	}
}

// SkillParamsFromSettings converts configured skill settings.
func SkillParamsFromSettings(s config.SkillSettings) SkillParams {
	return SkillParams{
		Neutral:       s.Neutral(),
		BonusPerExtra: s.BonusPerExtra(),
		BonusCap:      s.ExtraSkillCap,
		Floor:         s.Floor,
	}
}

// SkillMatch scores how much of the required skill set the candidate covers.
//
// An empty required set returns p.Neutral whatever the candidate has. Otherwise the base
// score is |required ∩ candidate| / |required|, raised by p.BonusPerExtra for each
// candidate skill outside the requirements (at most p.BonusCap of the base), capped at 1
// and never below p.Floor, so sharing more required skills never scores lower.
func SkillMatch(required, candidate features.SkillSet, p SkillParams) float64 {
	if required.Len() == 0 {
		return p.Neutral
	}

	shared := required.Intersect(candidate).Len()
	if shared == 0 {
		return p.Floor
	}
	base := float64(shared) / float64(required.Len())

	extra := candidate.Len() - shared
	bonus := math.Min(float64(extra)*p.BonusPerExtra, p.BonusCap)

	return math.Max(math.Min(base*(1+bonus), 1.0), p.Floor)
}

// ExperienceMatch returns 0.6 * yearsScore + 0.4 * keywordScore where
// yearsScore = min(candidateMaxYears / requiredMaxYears, 1), or 1 when no years are required, and
// keywordScore = |shared keywords| / |required keywords|, or 1 when no keywords are required.
func ExperienceMatch(required, candidate features.ExperienceProfile) float64 {
	yearsScore := 1.0
	if requiredYears := required.MaxYears(); requiredYears > 0 {
		yearsScore = math.Min(float64(candidate.MaxYears())/float64(requiredYears), 1.0)
	}

	keywordScore := 1.0
	if required.Keywords.Len() > 0 {
		keywordScore = float64(required.Keywords.Intersect(candidate.Keywords).Len()) / float64(required.Keywords.Len())
	}

	return 0.6*yearsScore + 0.4*keywordScore
}

// Squash maps a raw score through 1 / (1 + e^(-k*(raw-0.5))). Scores near 0.5 spread out
// and the tails flatten, so a raw 0.5 always squashes to exactly 0.5.
func Squash(raw, k float64) float64 {
	return 1 / (1 + math.Exp(-k*(raw-0.5)))
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
