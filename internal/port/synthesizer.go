package port

import "docqa/internal/domain"

// Synthesizer turns retrieved chunks into a displayable answer. It never fails.
type Synthesizer interface {
	Synthesize(chunks []domain.Chunk) string

	// SynthesizeContext works on prompt-shaped context: instructions,
	// retrieved passages and the question separated by blank lines.
	SynthesizeContext(context string) string
}

// AnswerStrategy is one heuristic in the synthesizer's fallback chain.
// It reports false when it has nothing to offer.
type AnswerStrategy interface {
	Name() string
	Extract(context string) (string, bool)
}
