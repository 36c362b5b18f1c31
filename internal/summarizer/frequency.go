package summarizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/localrivet/extractsum/internal/textproc"
)

// ErrNotInitialized is returned when a summarizer is used before Initialize.
var ErrNotInitialized = errors.New("summarizer not initialized")

// FrequencySummarizerConfig holds configuration for the FrequencySummarizer.
type FrequencySummarizerConfig struct {
	// Tokenizer splits sentences and words. When nil, Initialize loads
	// the English Punkt tokenizer.
	Tokenizer textproc.Tokenizer

	// Order arranges the selected sentences. Defaults to OrderRank.
	Order Order
}

// FrequencySummarizer ranks each sentence by the summed document frequency
// of its non-stopword words and returns the top-ranked ones.
// It keeps no per-call state and is safe for concurrent use once initialized.
type FrequencySummarizer struct {
	tokenizer textproc.Tokenizer
	order     Order
}

// ScoredSentence is a sentence chosen for a summary along with its rank.
type ScoredSentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// Analysis is the intermediate result of ranking a document.
type Analysis struct {
	Sentences   []string
	Frequencies FrequencyTable
	Ranks       Ranks
}

// NewFrequencySummarizer creates a new FrequencySummarizer.
func NewFrequencySummarizer(config *FrequencySummarizerConfig) *FrequencySummarizer {
	if config == nil {
		config = &FrequencySummarizerConfig{}
	}
	order := config.Order
	if order == "" {
		order = OrderRank
	}
	return &FrequencySummarizer{
		tokenizer: config.Tokenizer,
		order:     order,
	}
}

// Initialize loads the default tokenizer when none was configured.
func (s *FrequencySummarizer) Initialize() error {
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
func (s *FrequencySummarizer) Name() string {
	return ProviderFrequency
}

// Order returns the configured sentence order.
func (s *FrequencySummarizer) Order() Order {
	return s.order
}

// Analyze sanitizes text, splits it into sentences and computes the
// frequency table and sentence ranks.
func (s *FrequencySummarizer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.tokenizer == nil {
		return nil, ErrNotInitialized
	}

	content := textproc.Sanitize(text)
	sentences := s.tokenizer.Sentences(content)
	table := BuildFrequencyTable(textproc.ContentWords(s.tokenizer, content))

	return &Analysis{
		Sentences:   sentences,
		Frequencies: table,
		Ranks:       ScoreSentences(s.tokenizer, table, sentences),
	}, nil
}

// Select picks up to length sentences from the analysis.
func (a *Analysis) Select(length int, order Order) []ScoredSentence {
	k := clampLength(length, len(a.Sentences))
	indices := SelectTop(a.Ranks, k, order)

	out := make([]ScoredSentence, len(indices))
	for i, idx := range indices {
		out[i] = ScoredSentence{
			Index: idx,
			Text:  a.Sentences[idx],
			Score: a.Ranks[idx],
		}
	}
	return out
}

// SummarizeScored returns the selected sentences with their positions and scores.
func (s *FrequencySummarizer) SummarizeScored(ctx context.Context, text string, length int) ([]ScoredSentence, error) {
	analysis, err := s.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return analysis.Select(length, s.order), nil
}

// Summarize returns at most length sentences of text, chosen by word frequency.
func (s *FrequencySummarizer) Summarize(ctx context.Context, text string, length int) ([]string, error) {
	scored, err := s.SummarizeScored(ctx, text, length)
	if err != nil {
		return nil, err
	}

	return Texts(scored), nil
}
