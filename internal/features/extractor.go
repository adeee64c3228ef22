// Package features derives structured signals from raw text: technical skills,
// soft skills and an experience profile. Extraction is vocabulary lookup only, so
// every function here is pure and its results can be cached per document.
package features

// Profile bundles every signal extracted from one text.
type Profile struct {
	Technical  SkillSet          `json:"technical_skills"`
	Soft       SkillSet          `json:"soft_skills"`
	Experience ExperienceProfile `json:"experience"`
}

// Extractor holds the compiled vocabularies. It is immutable and safe for concurrent use.
type Extractor struct {
	technical  *Matcher
	soft       *Matcher
	experience *Matcher
}

// Vocabularies overrides the built-in word lists. Nil fields keep the defaults.
type Vocabularies struct {
	Technical  []string
	Soft       []string
	Experience []string
	Aliases    map[string]string
}

// NewExtractor compiles the given vocabularies.
func NewExtractor(v Vocabularies) *Extractor {
	if v.Technical == nil {
		v.Technical = technicalVocabulary
	}
	if v.Soft == nil {
		v.Soft = softVocabulary
	}
	if v.Experience == nil {
		v.Experience = experienceVocabulary
	}
	if v.Aliases == nil {
		v.Aliases = aliases
	}
	return &Extractor{
		technical:  NewMatcher(v.Technical, v.Aliases),
		soft:       NewMatcher(v.Soft, v.Aliases),
		experience: NewMatcher(v.Experience, v.Aliases),
	}
}

var defaultExtractor = NewExtractor(Vocabularies{})

// Default returns the extractor built from the built-in vocabularies.
func Default() *Extractor {
	return defaultExtractor
}

func (e *Extractor) TechnicalSkills(text string) SkillSet {
	return e.technical.Match(text)
}

func (e *Extractor) SoftSkills(text string) SkillSet {
	return e.soft.Match(text)
}

// Experience parses year counts and seniority keywords.
func (e *Extractor) Experience(text string) ExperienceProfile {
	return ExperienceProfile{
		Years:    parseYears(text),
		Keywords: e.experience.Match(text),
	}
}

// Extract runs all three extractions.
func (e *Extractor) Extract(text string) Profile {
	return Profile{
		Technical:  e.TechnicalSkills(text),
		Soft:       e.SoftSkills(text),
		Experience: e.Experience(text),
	}
}

// ExtractTechnicalSkills uses the built-in technical vocabulary.
func ExtractTechnicalSkills(text string) SkillSet {
	return defaultExtractor.TechnicalSkills(text)
}

// ExtractSoftSkills uses the built-in soft-skill vocabulary.
func ExtractSoftSkills(text string) SkillSet {
	return defaultExtractor.SoftSkills(text)
}

// ExtractExperience uses the built-in experience keywords.
func ExtractExperience(text string) ExperienceProfile {
	return defaultExtractor.Experience(text)
}

// Extract uses the built-in vocabularies.
func Extract(text string) Profile {
	return defaultExtractor.Extract(text)
}
