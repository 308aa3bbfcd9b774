package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// formFeed separates pages in plain-text exports.
const formFeed = "\f"

// TextReader reads UTF-8 text files. Form feeds start a new page.
type TextReader struct{}

func (TextReader) ReadPages(_ context.Context, path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text", path)
	}

	parts := strings.Split(string(data), formFeed)
	pages := make([]Page, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, Page{Number: i + 1, Text: p})
	}
	return pages, nil
}
