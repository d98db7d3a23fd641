package synthesizer

import (
	"strings"
	"unicode/utf8"
)

const (
	paragraphPrefix   = "Based on the document:\n\n"
	longestLinePrefix = "From the document: "
	previewSuffix     = "..."

	// NoAnswer is returned when nothing in the retrieved text is usable.
	NoAnswer = "I found relevant information in the document but cannot provide a clear answer from the retrieved content."
)

// ParagraphStrategy picks the longest paragraph-like block that is neither
// too short to be content nor instructional text.
type ParagraphStrategy struct {
	MinChars   int
	Exclusions []string
}

func (s ParagraphStrategy) Name() string { return "paragraph" }

func (s ParagraphStrategy) Extract(context string) (string, bool) {
	best := ""
	bestLen := 0

	for _, block := range strings.Split(context, "\n\n") {
		block = strings.TrimSpace(block)
		n := utf8.RuneCountInString(block)
		if n < s.MinChars || s.excluded(block) {
			continue
		}
		if n > bestLen {
			best, bestLen = block, n
		}
	}

	if best == "" {
		return "", false
	}
	return paragraphPrefix + collapseWhitespace(best), true
}

func (s ParagraphStrategy) excluded(block string) bool {
	lower := strings.ToLower(block)
	for _, phrase := range s.Exclusions {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// LongestLineStrategy returns a preview of the longest line in the text.
// Exclusion phrases do not apply here.
type LongestLineStrategy struct {
	MinChars     int
	PreviewChars int
}

func (s LongestLineStrategy) Name() string { return "longest-line" }

func (s LongestLineStrategy) Extract(context string) (string, bool) {
	best := ""
	bestLen := 0

	for _, line := range strings.Split(context, "\n") {
		line = strings.TrimSpace(line)
		n := utf8.RuneCountInString(line)
		if n < s.MinChars || n == 0 {
			continue
		}
		if n > bestLen {
			best, bestLen = line, n
		}
	}

	if best == "" {
		return "", false
	}
	return longestLinePrefix + truncateRunes(best, s.PreviewChars) + previewSuffix, true
}

// SentinelStrategy always matches.
type SentinelStrategy struct{}

func (SentinelStrategy) Name() string { return "sentinel" }

func (SentinelStrategy) Extract(string) (string, bool) {
	return NoAnswer, true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
