package synthesizer

import (
	"log/slog"
	"strings"

	"docqa/config"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// Extractive answers by selecting text from the retrieved chunks. The
// strategies are tried in order and the first match wins.
type Extractive struct {
	strategies []port.AnswerStrategy
	logger     *slog.Logger
}

type Option func(*Extractive)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractive) {
		e.logger = logger
	}
}

// WithStrategies replaces the default chain. A sentinel is appended when
// the chain does not already end in one.
func WithStrategies(strategies ...port.AnswerStrategy) Option {
	return func(e *Extractive) {
		e.strategies = strategies
	}
}

func New(cfg config.SynthesisConfig, opts ...Option) *Extractive {
	e := &Extractive{
		strategies: []port.AnswerStrategy{
			ParagraphStrategy{MinChars: cfg.MinBlockChars, Exclusions: cfg.Exclusions},
			LongestLineStrategy{MinChars: cfg.MinLineChars, PreviewChars: cfg.PreviewChars},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if n := len(e.strategies); n == 0 || e.strategies[n-1].Name() != (SentinelStrategy{}).Name() {
		e.strategies = append(e.strategies, SentinelStrategy{})
	}
	return e
}

func (e *Extractive) Synthesize(chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return e.choose(strings.Join(texts, "\n\n"))
}

// SynthesizeContext answers from a prompt built by BuildPrompt. The
// instructions and the trailing question are removed before selection;
// text that does not carry them is used as is.
func (e *Extractive) SynthesizeContext(context string) string {
	return e.choose(stripPrompt(context))
}

func (e *Extractive) choose(context string) string {
	for _, s := range e.strategies {
		if answer, ok := s.Extract(context); ok && answer != "" {
			e.logger.Debug("answer selected", "strategy", s.Name(), "length", len(answer))
			return answer
		}
	}
	return NoAnswer
}
