package usecase

import (
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/skillmatch/backend/internal/domain"
)

// SkillExtractor finds vocabulary skills in free text
type SkillExtractor struct {
	surfaces           []string          // match priority order
	byFirstByte        map[byte][]int    // first byte -> indexes into surfaces
	canonical          map[string]string // surface -> canonical term
	canonicals         domain.SkillSet
	enableDebugLogging bool
}

// defaultExtractor is built once from the built-in vocabulary
var defaultExtractor = NewSkillExtractor(skillVocabulary, false)

// NewSkillExtractor indexes the vocabulary surfaces by their first byte.
// Surfaces keep vocabulary order; a surface already claimed by an earlier
// term is skipped since it could never match through the later one.
func NewSkillExtractor(terms []domain.Term, enableDebugLogging bool) *SkillExtractor {
	e := &SkillExtractor{
		byFirstByte:        make(map[byte][]int),
		canonical:          make(map[string]string),
		canonicals:         domain.NewSkillSet(),
		enableDebugLogging: enableDebugLogging,
	}

	for _, t := range terms {
		name := strings.ToLower(t.Canonical)
		e.canonicals.Add(name)
		for _, surface := range t.Surfaces {
			surface = strings.ToLower(surface)
			if surface == "" {
				continue
			}
			if _, seen := e.canonical[surface]; seen {
				continue
			}
			e.canonical[surface] = name
			e.byFirstByte[surface[0]] = append(e.byFirstByte[surface[0]], len(e.surfaces))
			e.surfaces = append(e.surfaces, surface)
		}
	}

	return e
}

// ExtractSkills runs the built-in vocabulary over text
func ExtractSkills(text string) domain.SkillSet {
	return defaultExtractor.Extract(text)
}

// Extract returns the canonical skills mentioned in text.
// Matching is done on the lowercased text against the lowercase surfaces.
func (e *SkillExtractor) Extract(text string) domain.SkillSet {
	skills := domain.NewSkillSet()
	if text == "" {
		return skills
	}

	lower := strings.ToLower(text)
	for i := 0; i < len(lower); {
		if surface, ok := e.matchAt(lower, i); ok {
			skills.Add(e.canonical[surface])
			i += len(surface)
			continue
		}
		_, size := utf8.DecodeRuneInString(lower[i:])
		i += size
	}

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] %d chars -> %d skills: %v", len(text), skills.Len(), skills.Sorted())
	}

	return skills
}

// Canonicals returns every canonical term the extractor can produce
func (e *SkillExtractor) Canonicals() domain.SkillSet {
	out := make(domain.SkillSet, len(e.canonicals))
	for s := range e.canonicals {
		out.Add(s)
	}
	return out
}

// matchAt returns the first surface, in vocabulary order, that starts at i with a
// word boundary on both sides. A surface failing its trailing boundary gives way
// to the next one, so "react.jsx" still yields "react".
func (e *SkillExtractor) matchAt(text string, i int) (string, bool) {
	candidates := e.byFirstByte[text[i]]
	if len(candidates) == 0 || !isWordBoundary(text, i) {
		return "", false
	}
	for _, idx := range candidates {
		surface := e.surfaces[idx]
		if strings.HasPrefix(text[i:], surface) && isWordBoundary(text, i+len(surface)) {
			return surface, true
		}
	}
	return "", false
}

// isWordBoundary reports whether a word character sits on exactly one side of position i.
// Word characters are Unicode letters, numbers and underscore, so "Pythonで" has no
// boundary after "python".
func isWordBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
