package usecase

import (
	"math"
	"sort"

	"github.com/skillmatch/backend/internal/domain"
)

// scoreDecimals is the precision of the match score
const scoreDecimals = 2

// AnalyzeMatch compares the skills found in a resume with the skills a role asks for.
// Matched and missing lists are sorted for stable display. The score is the share of
// role skills covered, as a percentage, and 0 when the role lists no skills at all.
func AnalyzeMatch(resume, role domain.SkillSet) domain.MatchResult {
	matched := make([]string, 0, len(role))
	missing := make([]string, 0, len(role))

	for skill := range role {
		if resume.Has(skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	sort.Strings(matched)
	sort.Strings(missing)

	score := 0.0
	if len(role) > 0 {
		score = roundScore(100 * float64(len(matched)) / float64(len(role)))
	}

	return domain.MatchResult{
		Matched: matched,
		Missing: missing,
		Score:   score,
	}
}

// roundScore rounds half to even, so 3.125 becomes 3.12 rather than 3.13
func roundScore(v float64) float64 {
	p := math.Pow10(scoreDecimals)
	return math.RoundToEven(v*p) / p
}
