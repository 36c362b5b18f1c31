package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// contractionSuffixes are split off their stem as separate tokens.
var contractionSuffixes = []string{"'s", "'re", "'ve", "'ll", "'d", "'m"}

// scanWords splits already-lowercased text into word and punctuation tokens.
// Whitespace is dropped. Runs of dots stay together ("..."); every other
// punctuation or symbol rune becomes its own token.
func scanWords(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, len(s)/5+1)
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			j := scanWordEnd(s, i)
			tokens = appendWord(tokens, s[i:j])
			i = j
		case r == '.':
			j := i
			for j < len(s) && s[j] == '.' {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		default:
			tokens = append(tokens, s[i:i+size])
			i += size
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// scanWordEnd returns the byte offset just past the word starting at start.
// Apostrophes and hyphens are kept between word runes; dots and commas are
// kept between digits so "3.5" and "1,000" stay whole.
func scanWordEnd(s string, start int) int {
	i := start
	var prev rune
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isWordRune(r) {
			prev = r
			i += size
			continue
		}
		if i+size < len(s) {
			next, _ := utf8.DecodeRuneInString(s[i+size:])
			switch {
			case (r == '\'' || r == '’' || r == '-') && isWordRune(next):
				prev = r
				i += size
				continue
			case (r == '.' || r == ',') && unicode.IsDigit(prev) && unicode.IsDigit(next):
				prev = r
				i += size
				continue
			}
		}
		break
	}
	return i
}

// appendWord appends w to tokens, splitting English contractions the way
// treebank tokenizers do: "don't" -> "do" "n't", "it's" -> "it" "'s".
func appendWord(tokens []string, w string) []string {
	norm := strings.ReplaceAll(w, "’", "'")
	if len(norm) > 3 && strings.HasSuffix(norm, "n't") {
		return append(tokens, norm[:len(norm)-3], "n't")
	}
	for _, suffix := range contractionSuffixes {
		if len(norm) > len(suffix) && strings.HasSuffix(norm, suffix) {
			return append(tokens, norm[:len(norm)-len(suffix)], suffix)
		}
	}
	return append(tokens, norm)
}
