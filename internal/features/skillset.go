package features

import "sort"

// SkillSet is a sorted set of normalized skill names. The zero value is an empty set.
type SkillSet []string

// NewSkillSet builds a set from arbitrary values, dropping duplicates and empty strings.
func NewSkillSet(values ...string) SkillSet {
	seen := make(map[string]struct{}, len(values))
	set := make(SkillSet, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	sort.Strings(set)
	return set
}

func (s SkillSet) Len() int {
	return len(s)
}

func (s SkillSet) Contains(skill string) bool {
	i := sort.SearchStrings(s, skill)
	return i < len(s) && s[i] == skill
}

// Intersect returns the skills present in both sets.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := make(SkillSet, 0)
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			out = append(out, s[i])
			i++
			j++
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Difference returns the skills of s missing from other.
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := make(SkillSet, 0)
	for _, skill := range s {
		if !other.Contains(skill) {
			out = append(out, skill)
		}
	}
	return out
}

// Strings returns a copy of the set as a plain slice.
func (s SkillSet) Strings() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
