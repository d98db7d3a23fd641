package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docqa/config"
	"docqa/internal/domain"
)

func newLoader() *Loader {
	return New(config.DefaultConfig().Loader)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetect(t *testing.T) {
	l := newLoader()

	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"manual.pdf", FormatPDF, true},
		{"docs/Manual.PDF", FormatPDF, true},
		{"notes.txt", FormatText, true},
		{"README.md", FormatMarkdown, true},
		{"/var/www/index.htm", FormatHTML, true},
		{"image.png", "", false},
	}

	for _, tt := range tests {
		format, ok := l.Detect(tt.path)
		if ok != tt.ok || format != tt.format {
			t.Errorf("Detect(%q) = %q, %v; want %q, %v", tt.path, format, ok, tt.format, tt.ok)
		}
	}
}

func TestDetectCustomPatterns(t *testing.T) {
	l := New(config.LoaderConfig{Text: []string{"**/manuals/*.log"}})

	if f, ok := l.Detect("/srv/manuals/device.log"); !ok || f != FormatText {
		t.Errorf("expected text format, got %q %v", f, ok)
	}
	if _, ok := l.Detect("/srv/other/device.log"); ok {
		t.Error("expected no match outside manuals/")
	}
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "manual.txt", "Page one text.\r\nSecond line.\fPage two text.\f\fPage four.")

	doc, err := newLoader().Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Source != path {
		t.Errorf("expected source %s, got %s", path, doc.Source)
	}
	if len(doc.Pages) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Text != "Page one text.\nSecond line." {
		t.Errorf("unexpected page 1 text %q", doc.Pages[0].Text)
	}
	if doc.Pages[3].Number != 4 || doc.Pages[3].Text != "Page four." {
		t.Errorf("unexpected page 4: %+v", doc.Pages[3])
	}
}

func TestLoadMarkdown(t *testing.T) {
	content := `# Resetting the device

Press the **menu** button
and hold it for five seconds.

- Unplug the charger
- Remove the batteries

` + "```\nreset --factory\n```\n"

	path := writeFile(t, "guide.md", content)

	doc, err := newLoader().Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected single page, got %d", len(doc.Pages))
	}

	text := doc.Pages[0].Text
	for _, want := range []string{
		"Resetting the device\n\nPress the menu button and hold it for five seconds.",
		"Unplug the charger\n\nRemove the batteries",
		"reset --factory",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
	if strings.Contains(text, "**") || strings.Contains(text, "# ") {
		t.Errorf("markdown syntax leaked into text: %q", text)
	}
}

func TestLoadHTMLBody(t *testing.T) {
	content := `<html><head><style>p { color: red }</style></head>
<body><h1>Warranty</h1><p>Coverage   lasts
two years.</p><script>alert(1)</script><ul><li>Keep the receipt</li></ul></body></html>`

	doc, err := newLoader().Load(writeFile(t, "warranty.html", content))
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Pages) != 1 {
		t.Fatalf("expected single page, got %d", len(doc.Pages))
	}
	want := "Warranty\n\nCoverage lasts two years.\n\nKeep the receipt"
	if doc.Pages[0].Text != want {
		t.Errorf("expected %q, got %q", want, doc.Pages[0].Text)
	}
}

func TestLoadHTMLPages(t *testing.T) {
	content := `<html><body>
<div class="page"><p>First page.</p></div>
<section data-page="2"><p>Second page.</p></section>
</body></html>`

	doc, err := newLoader().Load(writeFile(t, "book.html", content))
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[1].Number != 2 || doc.Pages[1].Text != "Second page." {
		t.Errorf("unexpected second page: %+v", doc.Pages[1])
	}
}

func TestLoadErrors(t *testing.T) {
	l := newLoader()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.pdf")},
		{"unsupported format", writeFile(t, "photo.png", "binary")},
		{"blank document", writeFile(t, "blank.txt", "  \n\f\n  ")},
		{"directory", t.TempDir()},
		{"corrupt pdf", writeFile(t, "broken.pdf", "not a pdf at all")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(tt.path)
			if !errors.Is(err, domain.ErrDocumentLoad) {
				t.Fatalf("expected ErrDocumentLoad, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("expected error to name %s, got %v", tt.path, err)
			}
		})
	}
}
