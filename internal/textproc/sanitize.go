// Package textproc provides input cleanup and tokenization for the
// extractive summarizer: whitespace sanitizing, sentence and word splitting,
// stopword filtering and HTML-to-text extraction.
package textproc

import "strings"

// sanitizer maps form feeds, tabs and newlines to a space and drops carriage returns.
var sanitizer = strings.NewReplacer(
	"\f", " ",
	"\t", " ",
	"\n", " ",
	"\r", "",
)

// Sanitize replaces form-feed, tab and newline characters with a single space
// and removes carriage returns. No other normalization is performed.
func Sanitize(text string) string {
	return sanitizer.Replace(text)
}
