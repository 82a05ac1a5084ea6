package domain

import (
	"sort"
	"time"
)

// SkillSet is an unordered, duplicate-free set of canonical skill terms
type SkillSet map[string]struct{}

// NewSkillSet builds a set from the given terms
func NewSkillSet(skills ...string) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		set.Add(s)
	}
	return set
}

// Add inserts a skill into the set
func (s SkillSet) Add(skill string) {
	s[skill] = struct{}{}
}

// Has reports whether the skill is in the set
func (s SkillSet) Has(skill string) bool {
	_, ok := s[skill]
	return ok
}

// Len returns the number of skills in the set
func (s SkillSet) Len() int {
	return len(s)
}

// Sorted returns the skills in lexicographic order
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// Term is one entry of the skill vocabulary: a canonical name and the surface
// forms that map to it, listed in match priority order
type Term struct {
	Canonical string
	Surfaces  []string
}

// MatchResult is the outcome of comparing resume skills against role skills
type MatchResult struct {
	Matched []string `json:"matchedSkills"`
	Missing []string `json:"missingSkills"`
	Score   float64  `json:"score"` // 0-100, two decimals
}

// MatchedCount returns the number of matched skills
func (r MatchResult) MatchedCount() int {
	return len(r.Matched)
}

// MissingCount returns the number of missing skills
func (r MatchResult) MissingCount() int {
	return len(r.Missing)
}

// Analysis is the full output of one resume-vs-target comparison
type Analysis struct {
	ID           string      `json:"analysisId"`
	Target       string      `json:"target"`     // role name, or "custom" / the job URL
	TargetKind   string      `json:"targetKind"` // "role", "description" or "url"
	ResumeSkills []string    `json:"resumeSkills"`
	TargetSkills []string    `json:"targetSkills"`
	Result       MatchResult `json:"result"`
	ReportID     string      `json:"reportId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// HasReport reports whether a rendered report was stored for this analysis
func (a *Analysis) HasReport() bool {
	return a.ReportID != ""
}

// Target kinds
const (
	TargetRole        = "role"
	TargetDescription = "description"
	TargetURL         = "url"
)

// AnalysisRequest represents a resume analysis request
type AnalysisRequest struct {
	ResumeText     string `json:"resumeText"`
	Role           string `json:"role,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	JobURL         string `json:"jobUrl,omitempty"`
}
