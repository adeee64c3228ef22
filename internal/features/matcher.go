package features

import (
	"strings"
)

type pattern struct {
	text      string
	canonical string
}

// Matcher finds vocabulary terms in text. Matching is case-insensitive and respects word
// boundaries, so "java" does not match inside "javascript" and "sql" does not match
// inside "postgresql". A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	patterns []pattern
}

// NewMatcher compiles a vocabulary. Aliases whose target is not in the vocabulary are ignored.
func NewMatcher(vocabulary []string, aliasMap map[string]string) *Matcher {
	known := make(map[string]struct{}, len(vocabulary))
	m := &Matcher{patterns: make([]pattern, 0, len(vocabulary)+len(aliasMap))}
	for _, term := range vocabulary {
		term = normalizeText(term)
		known[term] = struct{}{}
		m.patterns = append(m.patterns, pattern{text: term, canonical: term})
	}
	for alias, target := range aliasMap {
		target = normalizeText(target)
		if _, ok := known[target]; !ok {
			continue
		}
		m.patterns = append(m.patterns, pattern{text: normalizeText(alias), canonical: target})
	}
	return m
}

// Match returns the vocabulary terms found in text.
func (m *Matcher) Match(text string) SkillSet {
	normalized := normalizeText(text)
	if normalized == "" {
		return SkillSet{}
	}
	found := make([]string, 0)
	for _, p := range m.patterns {
		if containsTerm(normalized, p.text) {
			found = append(found, p.canonical)
		}
	}
	return NewSkillSet(found...)
}

// normalizeText lowercases text and collapses whitespace runs to a single space.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// containsTerm reports whether term occurs in text delimited by non-alphanumeric characters
// or the ends of the text.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
}

func boundaryBefore(text string, start int) bool {
	return start == 0 || !isWordByte(text[start-1])
}

func boundaryAfter(text string, end int) bool {
	if end == len(text) {
		return true
	}
	next := text[end]
	// "c" + "++" style suffixes belong to the preceding word
	return !isWordByte(next) && next != '+' && next != '#'
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
