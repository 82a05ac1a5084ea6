package usecase

import (
	"log"
	"regexp"
	"strings"
	"unicode"
)

// TextPreprocessor cleans text pulled out of documents and web pages before skill extraction.
// Text typed or pasted by the user is never preprocessed.
type TextPreprocessor struct {
	enableDebugLogging bool
}

// Compiled regex patterns for text preprocessing
var (
	// Runs of horizontal whitespace (spaces and tabs, not newlines)
	horizontalSpacePattern = regexp.MustCompile(`[ \t]+`)

	// Whitespace hugging a newline
	newlinePaddingPattern = regexp.MustCompile(` *\n *`)

	// Three or more consecutive newlines
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// NewTextPreprocessor creates a new text preprocessor
func NewTextPreprocessor(enableDebugLogging bool) *TextPreprocessor {
	return &TextPreprocessor{
		enableDebugLogging: enableDebugLogging,
	}
}

// Normalize strips control characters, maps Unicode spaces to ASCII, and collapses whitespace
func (p *TextPreprocessor) Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Step 1: Unify line endings
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")

	// Step 2: Map exotic spaces to ASCII and drop control characters
	cleaned = strings.Map(normalizeRune, cleaned)

	// Step 3: Collapse whitespace
	cleaned = horizontalSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = newlinePaddingPattern.ReplaceAllString(cleaned, "\n")
	cleaned = blankLinesPattern.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if p.enableDebugLogging {
		log.Printf("[PREPROCESS] %d chars -> %d chars", len(text), len(cleaned))
	}

	return cleaned
}

// normalizeRune is the strings.Map callback for Normalize; returning -1 drops the rune
func normalizeRune(r rune) rune {
	switch {
	case r == '\n' || r == '\t':
		return r
	case unicode.IsSpace(r) || unicode.Is(unicode.Zs, r):
		return ' '
	case unicode.IsControl(r) || r == '\ufeff' || r == '\u200b':
		return -1
	default:
		return r
	}
}
