package model

// ScoreBreakdown holds every signal computed for one (query, document) pair.
// All values are on the unit scale [0, 1].
type ScoreBreakdown struct {
	CosineSimilarity float64 `json:"cosine_similarity"`
	BM25Score        float64 `json:"bm25_score"`
	TechnicalMatch   float64 `json:"technical_match"`
	SoftSkillsMatch  float64 `json:"soft_skills_match"`
	ExperienceMatch  float64 `json:"experience_match"`
	OverallMatch     float64 `json:"overall_match"`
}

// RankedResult is one entry of a ranking, carrying the posting fields a client displays.
type RankedResult struct {
	DocumentID   string         `json:"id"`
	Position     int            `json:"rank"` // 1-based place in the final ordering
	Scores       ScoreBreakdown `json:"scores"`
	Name         string         `json:"name"`
	JobPosition  string         `json:"position"`
	Description  string         `json:"description"`
	Requirements string         `json:"requirements"`
	Location     string         `json:"location,omitempty"`
	Salary       *SalaryRange   `json:"salary,omitempty"`

	MatchedTechnicalSkills []string `json:"matched_technical_skills"`
	MatchedSoftSkills      []string `json:"matched_soft_skills"`
	MissingTechnicalSkills []string `json:"missing_technical_skills"`
}

// SnapshotInfo describes the corpus snapshot a ranking was computed against.
type SnapshotInfo struct {
	ID              string  `json:"id"`
	Version         uint64  `json:"version"`
	DocumentCount   int     `json:"document_count"`
	VocabularySize  int     `json:"vocabulary_size"`
	BuiltAt         string  `json:"built_at"`
	BuildDurationMs float64 `json:"build_duration_ms"`
	Stale           bool    `json:"stale"`
}
