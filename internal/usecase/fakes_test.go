package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"docqa/internal/domain"
)

// keywordEmbedder scores each text by keyword occurrences, plus a constant
// component so no vector is zero.
type keywordEmbedder struct {
	keywords []string

	mu    sync.Mutex
	calls int
	texts int
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"reset", "battery", "warranty", "schedule"}}
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.texts += len(texts)
	e.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		v := make([]float32, len(e.keywords)+1)
		for j, kw := range e.keywords {
			v[j] = float32(strings.Count(lower, kw))
		}
		v[len(e.keywords)] = 0.1
		out[i] = v
	}
	return out, nil
}

func (e *keywordEmbedder) Dimension() int    { return len(e.keywords) + 1 }
func (e *keywordEmbedder) ModelName() string { return "keywords" }

func (e *keywordEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

var errProvider = errors.New("provider unavailable")

// flakyEmbedder fails once it has been called failAfter times.
type flakyEmbedder struct {
	*keywordEmbedder
	failAfter int
	shortBy   int
	mixedDims bool
}

func (e *flakyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	n := e.calls
	e.mu.Unlock()

	if e.failAfter >= 0 && n >= e.failAfter {
		e.mu.Lock()
		e.calls++
		e.mu.Unlock()
		return nil, errProvider
	}

	out, err := e.keywordEmbedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if e.shortBy > 0 && len(out) >= e.shortBy {
		out = out[:len(out)-e.shortBy]
	}
	if e.mixedDims && len(out) > 0 {
		out[len(out)-1] = out[len(out)-1][:2]
	}
	return out, nil
}

// fixedSplitter returns one chunk per page, without windowing.
type fixedSplitter struct{}

func (fixedSplitter) Split(pages []domain.Page, source string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{Text: p.Text, Source: source, Page: p.Number, Seq: len(chunks)})
	}
	return chunks, nil
}

type mapLoader map[string]domain.Document

func (l mapLoader) Load(path string) (domain.Document, error) {
	doc, ok := l[path]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s: no such file", domain.ErrDocumentLoad, path)
	}
	return doc, nil
}

func pagesOf(texts ...string) []domain.Page {
	pages := make([]domain.Page, len(texts))
	for i, t := range texts {
		pages[i] = domain.Page{Number: i + 1, Text: t}
	}
	return pages
}

var manualPages = pagesOf(
	"To reset the thermostat, press and hold the menu button for five seconds until the display flashes. The reset clears the schedule.",
	"Replace the battery when the low battery icon appears. Use two AA alkaline battery cells and never mix old and new ones.",
	"The warranty covers manufacturing defects for two years from the date of purchase. Keep your receipt as proof of purchase.",
	"The schedule supports four periods per day. Each period of the schedule has a start time and a target temperature.",
)

// hookEmbedder runs onQuery once, the first time a single text is embedded.
type hookEmbedder struct {
	*keywordEmbedder
	onQuery func()
}

func (e *hookEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 1 && e.onQuery != nil {
		f := e.onQuery
		e.onQuery = nil
		f()
	}
	return e.keywordEmbedder.Embed(ctx, texts)
}
