package loader

import (
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"docqa/internal/domain"
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, td, th, blockquote, dt, dd"

// readHTML returns one page per element marked as a page (class "page" or a
// data-page attribute), or the whole body as a single page.
func readHTML(path string) ([]domain.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript").Remove()

	marked := doc.Find(".page, [data-page]")
	if marked.Length() == 0 {
		return []domain.Page{{Number: 1, Text: blockText(doc.Find("body"))}}, nil
	}

	var pages []domain.Page
	marked.Each(func(i int, s *goquery.Selection) {
		pages = append(pages, domain.Page{Number: i + 1, Text: blockText(s)})
	})
	return pages, nil
}

// blockText joins the text of the innermost block elements with blank lines.
func blockText(s *goquery.Selection) string {
	var blocks []string

	s.Find(blockSelector).Each(func(_ int, b *goquery.Selection) {
		if b.Find(blockSelector).Length() > 0 {
			return
		}
		var text string
		if b.Is("pre") {
			text = strings.TrimSpace(b.Text())
		} else {
			text = strings.Join(strings.Fields(b.Text()), " ")
		}
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return strings.Join(strings.Fields(s.Text()), " ")
	}
	return strings.Join(blocks, "\n\n")
}
