package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"docqa/internal/domain"
)

// DefaultLookbackRatio is the share of the window searched backwards for a
// natural break before falling back to a hard cut.
const DefaultLookbackRatio = 0.2

// WindowChunker slides a fixed-size character window over each page.
// Consecutive windows on a page share exactly overlap characters.
type WindowChunker struct {
	size     int
	overlap  int
	lookback int
}

// NewWindowChunker validates the window configuration.
func NewWindowChunker(size, overlap int, lookbackRatio float64) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrConfiguration, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk_overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk_overlap %d must be smaller than chunk_size %d", domain.ErrConfiguration, overlap, size)
	}
	if lookbackRatio < 0 || lookbackRatio > 1 {
		return nil, fmt.Errorf("%w: lookback_ratio must be within [0, 1], got %g", domain.ErrConfiguration, lookbackRatio)
	}

	return &WindowChunker{
		size:     size,
		overlap:  overlap,
		lookback: int(float64(size) * lookbackRatio),
	}, nil
}

func (c *WindowChunker) Size() int    { return c.size }
func (c *WindowChunker) Overlap() int { return c.overlap }

// Split chunks every page independently; windows never cross a page break.
func (c *WindowChunker) Split(pages []domain.Page, source string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		for _, text := range c.splitPage(page.Text) {
			chunks = append(chunks, domain.Chunk{
				Text:   text,
				Source: source,
				Page:   page.Number,
				Seq:    len(chunks),
			})
		}
	}

	return chunks, nil
}

func (c *WindowChunker) splitPage(text string) []string {
	runes := []rune(text)
	var windows []string

	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			windows = append(windows, string(runes[start:]))
			break
		}

		end = c.findBoundary(runes, start, end)
		windows = append(windows, string(runes[start:end]))

		start = end - c.overlap
	}

	return windows
}

// findBoundary moves end back to the closest paragraph break, then sentence
// break, then whitespace inside the lookback window. The result always leaves
// room for the overlap so the next window starts past start.
func (c *WindowChunker) findBoundary(runes []rune, start, end int) int {
	floor := end - c.lookback
	if least := start + c.overlap + 1; floor < least {
		floor = least
	}
	if floor > end {
		return end
	}

	for _, isBreak := range []func([]rune, int) bool{isParagraphBreak, isSentenceBreak, isWhitespaceBreak} {
		for pos := end; pos >= floor; pos-- {
			if isBreak(runes, pos) {
				return pos
			}
		}
	}

	return end
}

// isParagraphBreak reports whether pos directly follows a blank line.
func isParagraphBreak(runes []rune, pos int) bool {
	return pos >= 2 && runes[pos-1] == '\n' && runes[pos-2] == '\n'
}

// isSentenceBreak reports whether pos sits on the whitespace after terminal punctuation.
func isSentenceBreak(runes []rune, pos int) bool {
	if pos < 1 || pos >= len(runes) {
		return false
	}
	switch runes[pos-1] {
	case '.', '!', '?':
		return unicode.IsSpace(runes[pos])
	}
	return false
}

func isWhitespaceBreak(runes []rune, pos int) bool {
	return pos >= 1 && unicode.IsSpace(runes[pos-1])
}
