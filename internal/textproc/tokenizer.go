package textproc

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// Tokenizer splits text into sentences and lowercase word tokens and decides
// which words carry no topical signal.
type Tokenizer interface {
	// Sentences returns the sentences of text in order of appearance.
	Sentences(text string) []string

	// Words returns the lowercase word and punctuation tokens of text in order.
	Words(text string) []string

	// IsStopword reports whether word is excluded from scoring.
	IsStopword(word string) bool
}

// PunktTokenizer is the default Tokenizer. Sentence boundaries come from the
// Punkt English model; words come from a Unicode scanner with treebank-style
// punctuation and contraction splitting.
type PunktTokenizer struct {
	punkt     *sentences.DefaultSentenceTokenizer
	stopwords StopwordSet
	lang      language.Tag
}

// NewPunktTokenizer loads the English Punkt model and the English stopword set.
func NewPunktTokenizer() (*PunktTokenizer, error) {
	st, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load english sentence model: %w", err)
	}

	return &PunktTokenizer{
		punkt:     st,
		stopwords: EnglishStopwords(),
		lang:      language.English,
	}, nil
}

// WithStopwords returns a copy of the tokenizer using the given stopword set.
func (t *PunktTokenizer) WithStopwords(set StopwordSet) *PunktTokenizer {
	clone := *t
	clone.stopwords = set
	return &clone
}

// Sentences splits text into trimmed, non-empty sentences.
func (t *PunktTokenizer) Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	spans := t.punkt.Tokenize(text)
	out := make([]string, 0, len(spans))
	for _, span := range spans {
		s := strings.TrimSpace(span.Text)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Words lowercases text and splits it into word and punctuation tokens.
func (t *PunktTokenizer) Words(text string) []string {
	// A Caser keeps per-call state, so it is not shared.
	lower := cases.Lower(t.lang).String(text)
	return scanWords(lower)
}

// IsStopword reports whether word is a stopword or a punctuation character.
func (t *PunktTokenizer) IsStopword(word string) bool {
	return t.stopwords.Contains(word)
}

// ContentWords returns the lowercase tokens of text that are not stopwords.
func ContentWords(tok Tokenizer, text string) []string {
	words := tok.Words(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !tok.IsStopword(w) {
			out = append(out, w)
		}
	}
	return out
}
