package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"docqa/config"
	"docqa/internal/domain"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

type route struct {
	format   Format
	patterns []string
	read     func(path string) ([]domain.Page, error)
}

// Loader reads a document from disk and returns its pages. The reader is
// picked by matching the file name against the configured patterns.
type Loader struct {
	routes []route
}

func New(cfg config.LoaderConfig) *Loader {
	return &Loader{
		routes: []route{
			{FormatPDF, cfg.PDF, readPDF},
			{FormatText, cfg.Text, readText},
			{FormatMarkdown, cfg.Markdown, readMarkdown},
			{FormatHTML, cfg.HTML, readHTML},
		},
	}
}

// Detect returns the format whose patterns match path.
func (l *Loader) Detect(path string) (Format, bool) {
	if r, ok := l.match(path); ok {
		return r.format, true
	}
	return "", false
}

func (l *Loader) match(path string) (route, bool) {
	slashed := filepath.ToSlash(strings.ToLower(path))
	base := strings.ToLower(filepath.Base(path))

	for _, r := range l.routes {
		for _, pattern := range r.patterns {
			pattern = strings.ToLower(pattern)
			target := base
			if strings.Contains(pattern, "/") {
				target = slashed
			}
			if matched, err := doublestar.Match(pattern, target); err == nil && matched {
				return r, true
			}
		}
	}
	return route{}, false
}

func (l *Loader) Load(path string) (domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, path, err)
	}
	if info.IsDir() {
		return domain.Document{}, fmt.Errorf("%w: %s is a directory", domain.ErrDocumentLoad, path)
	}

	r, ok := l.match(path)
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s: unsupported document format", domain.ErrDocumentLoad, path)
	}

	pages, err := r.read(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, path, err)
	}

	nonEmpty := 0
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return domain.Document{}, fmt.Errorf("%w: %s: no extractable text", domain.ErrDocumentLoad, path)
	}

	return domain.Document{Source: path, Pages: pages}, nil
}
