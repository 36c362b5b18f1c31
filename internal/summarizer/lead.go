package summarizer

import (
	"context"
	"fmt"

	"github.com/localrivet/extractsum/internal/textproc"
)

// ScoredSummarizer is implemented by summarizers that can report the
// position and score of each selected sentence.
type ScoredSummarizer interface {
	Summarizer
	SummarizeScored(ctx context.Context, text string, length int) ([]ScoredSentence, error)
}

// LeadSummarizer is a baseline Summarizer that returns the first sentences
// of the text. It shares sanitizing, sentence splitting and length clamping
// with the FrequencySummarizer.
type LeadSummarizer struct {
	tokenizer textproc.Tokenizer
}

// NewLeadSummarizer creates a new LeadSummarizer. A nil tokenizer is replaced
// by the English Punkt tokenizer during Initialize.
func NewLeadSummarizer(tok textproc.Tokenizer) *LeadSummarizer {
	return &LeadSummarizer{tokenizer: tok}
}

// Initialize sets up the summarizer with any required configuration.
func (s *LeadSummarizer) Initialize() error {
	if s.tokenizer != nil {
		return nil
	}
	tok, err := textproc.NewPunktTokenizer()
	if err != nil {
		return fmt.Errorf("failed to create tokenizer: %w", err)
	}
	s.tokenizer = tok
	return nil
}

// Name returns the provider name.
func (s *LeadSummarizer) Name() string {
	return ProviderLead
}

// SummarizeScored returns the first length sentences. Scores are always zero.
func (s *LeadSummarizer) SummarizeScored(ctx context.Context, text string, length int) ([]ScoredSentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.tokenizer == nil {
		return nil, ErrNotInitialized
	}

	sentences := s.tokenizer.Sentences(textproc.Sanitize(text))
	k := clampLength(length, len(sentences))

	out := make([]ScoredSentence, k)
	for i := 0; i < k; i++ {
		out[i] = ScoredSentence{Index: i, Text: sentences[i]}
	}
	return out, nil
}

// Summarize returns the first length sentences of text.
func (s *LeadSummarizer) Summarize(ctx context.Context, text string, length int) ([]string, error) {
	scored, err := s.SummarizeScored(ctx, text, length)
	if err != nil {
		return nil, err
	}
	return Texts(scored), nil
}
