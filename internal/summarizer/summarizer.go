// Package summarizer provides interfaces and implementations for
// extractive summarization: sentences are ranked and returned verbatim.
package summarizer

import (
	"context"
	"fmt"
	"strings"
)

const (
	// DefaultSummaryLength is the number of sentences returned when the caller
	// does not ask for a specific length.
	DefaultSummaryLength = 4

	// ProviderFrequency selects the word-frequency summarizer.
	ProviderFrequency = "frequency"

	// ProviderLead selects the lead (first sentences) baseline.
	ProviderLead = "lead"
)

// Summarizer defines the interface for extractive summarizers.
type Summarizer interface {
	// Summarize returns at most length sentences taken verbatim from text.
	Summarize(ctx context.Context, text string, length int) ([]string, error)

	// Initialize sets up the summarizer with any required configuration.
	Initialize() error

	// Name returns the provider name of the summarizer.
	Name() string
}

// Order controls how selected sentences are arranged in a summary.
type Order string

const (
	// OrderRank returns sentences as the top-K selection yields them:
	// highest score first, ties broken by earlier position.
	OrderRank Order = "rank"

	// OrderPosition returns selected sentences in document order.
	OrderPosition Order = "position"
)

// ParseOrder converts a configuration string to an Order.
// An empty string yields OrderRank.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderRank:
		return OrderRank, nil
	case OrderPosition:
		return OrderPosition, nil
	default:
		return "", fmt.Errorf("unknown summary order %q", s)
	}
}

// clampLength limits the requested length to the number of sentences.
// Non-positive lengths yield zero.
func clampLength(length, sentences int) int {
	if length <= 0 {
		return 0
	}
	if length > sentences {
		return sentences
	}
	return length
}

// Texts returns the sentence texts of scored, in order.
func Texts(scored []ScoredSentence) []string {
	out := make([]string, len(scored))
	for i, sentence := range scored {
		out[i] = sentence.Text
	}
	return out
}
