package features

import (
	"regexp"
	"sort"
	"strconv"
)

// yearsRegex captures the integer in phrases like "5 years", "3+ years" or "10 yrs".
var yearsRegex = regexp.MustCompile(`(\d+)\s*\+?\s*(?:years?|yrs?)\b`)

// maxPlausibleYears drops numbers that are clearly not career lengths ("2024 years" typos, ids).
const maxPlausibleYears = 60

// ExperienceProfile summarizes the experience a text mentions or asks for.
type ExperienceProfile struct {
	Years    []int    `json:"years"` // sorted, unique; {0} when no year count is found
	Keywords SkillSet `json:"keywords"`
}

// MaxYears returns the largest year count in the profile.
func (p ExperienceProfile) MaxYears() int {
	if len(p.Years) == 0 {
		return 0
	}
	return p.Years[len(p.Years)-1]
}

// parseYears returns the sorted unique year counts mentioned in text, or {0} if there are none.
func parseYears(text string) []int {
	matches := yearsRegex.FindAllStringSubmatch(normalizeText(text), -1)

	seen := make(map[int]struct{}, len(matches))
	years := make([]int, 0, len(matches))
	for _, match := range matches {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 0 || n > maxPlausibleYears {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		years = append(years, n)
	}
	if len(years) == 0 {
		return []int{0}
	}
	sort.Ints(years)
	return years
}
