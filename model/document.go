package model

import "strings"

// Field boost factors used when building the text a document is indexed under.
const (
	NameBoost     = 3
	PositionBoost = 2
)

// SalaryRange is an optional posted pay band.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
}

// Document is one job posting in the corpus. ID is the identity; the other fields are
// immutable within a corpus snapshot.
type Document struct {
	ID           string       `json:"id" validate:"required"`
	Name         string       `json:"name" validate:"required"`
	Position     string       `json:"position"`
	Description  string       `json:"description"`
	Requirements string       `json:"requirements"`
	Location     string       `json:"location,omitempty"`
	Salary       *SalaryRange `json:"salary,omitempty"`
}

// BoostedText returns the text the lexical index sees for this document: name three
// times, position twice, then description and requirements once each.
func (d Document) BoostedText() string {
	parts := make([]string, 0, NameBoost+PositionBoost+2)
	for i := 0; i < NameBoost; i++ {
		parts = append(parts, d.Name)
	}
	for i := 0; i < PositionBoost; i++ {
		parts = append(parts, d.Position)
	}
	parts = append(parts, d.Description, d.Requirements)
	return strings.Join(parts, " ")
}

// FeatureText returns the unboosted text skills and experience are extracted from.
func (d Document) FeatureText() string {
	return strings.Join([]string{d.Name, d.Position, d.Description, d.Requirements}, " ")
}
