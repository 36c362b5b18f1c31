package summarizer

import (
	"container/heap"
	"sort"

	"github.com/localrivet/extractsum/internal/textproc"
)

// FrequencyTable maps a content word to its number of occurrences in a document.
type FrequencyTable map[string]int

// Ranks maps a sentence index to its score. Sentences without a single
// scorable word have no entry.
type Ranks map[int]int

// BuildFrequencyTable counts the occurrences of each word.
func BuildFrequencyTable(words []string) FrequencyTable {
	table := make(FrequencyTable, len(words))
	for _, w := range words {
		table[w]++
	}
	return table
}

// ScoreSentences tokenizes every sentence on its own and sums the table
// counts of its words. Words missing from the table contribute nothing, and
// an index only enters the result once one of its words is found.
func ScoreSentences(tok textproc.Tokenizer, table FrequencyTable, sentences []string) Ranks {
	ranks := make(Ranks, len(sentences))
	for i, sentence := range sentences {
		for _, w := range tok.Words(sentence) {
			if count, ok := table[w]; ok {
				ranks[i] += count
			}
		}
	}
	return ranks
}

// scoredIndex pairs a sentence index with its rank.
type scoredIndex struct {
	index int
	score int
}

// outranks reports whether a should be preferred over b.
func (a scoredIndex) outranks(b scoredIndex) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.index < b.index
}

// worstFirst is a min-heap with the weakest candidate at the root.
type worstFirst []scoredIndex

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return h[j].outranks(h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(scoredIndex)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// SelectTop returns the indices of the k highest-ranked sentences using a
// bounded heap. Only indices present in ranks are eligible, so fewer than k
// indices come back when fewer sentences were ranked. With OrderRank the
// result runs from highest to lowest score, ties going to the earlier
// sentence; with OrderPosition it is sorted by index.
func SelectTop(ranks Ranks, k int, order Order) []int {
	if k <= 0 || len(ranks) == 0 {
		return []int{}
	}

	// Visit candidates by position so tie handling does not depend on map order.
	indices := make([]int, 0, len(ranks))
	for i := range ranks {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	h := make(worstFirst, 0, min(k, len(indices)))
	for _, i := range indices {
		candidate := scoredIndex{index: i, score: ranks[i]}
		if h.Len() < k {
			heap.Push(&h, candidate)
			continue
		}
		if candidate.outranks(h[0]) {
			h[0] = candidate
			heap.Fix(&h, 0)
		}
	}

	selected := make([]int, h.Len())
	for i := len(selected) - 1; i >= 0; i-- {
		selected[i] = heap.Pop(&h).(scoredIndex).index
	}

	if order == OrderPosition {
		sort.Ints(selected)
	}
	return selected
}
