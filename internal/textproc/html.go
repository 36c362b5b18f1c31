package textproc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Input formats accepted by Prepare.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// blockSelector lists elements that end a line of visible text.
const blockSelector = "p, div, br, li, h1, h2, h3, h4, h5, h6, tr, blockquote, pre, section, article"

// ExtractHTMLText returns the visible text of an HTML document.
// Script, style and head content is dropped and block elements are
// separated by newlines so sentences from adjacent blocks do not merge.
func ExtractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, head, template").Remove()
	doc.Find(blockSelector).Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

// Prepare converts raw input in the given format to plain text.
// An empty format is treated as FormatText.
func Prepare(format, input string) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return input, nil
	case FormatHTML:
		return ExtractHTMLText(input)
	default:
		return "", fmt.Errorf("unsupported input format %q", format)
	}
}
