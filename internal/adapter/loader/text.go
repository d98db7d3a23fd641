package loader

import (
	"os"
	"strings"

	"docqa/internal/domain"
)

// readText treats form feeds as page breaks.
func readText(path string) ([]domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	parts := strings.Split(content, "\f")

	pages := make([]domain.Page, len(parts))
	for i, part := range parts {
		pages[i] = domain.Page{Number: i + 1, Text: part}
	}
	return pages, nil
}
