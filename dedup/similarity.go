package dedup

import (
	"sort"
	"strings"
)

// TitleSimilarity computes a normalized similarity in [0,1] between two
// listing titles. Titles are lowercased and their tokens sorted before a
// sequence ratio is taken, so re-posted listings with reworded titles
// ("Luxury 3 Bedroom Duplex in Lekki" vs "3 Bedroom Duplex For Sale In
// Lekki Luxury") still score high.
func TitleSimilarity(a, b string) float64 {
	return sequenceRatio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// sequenceRatio is the classic 2*M/T ratio, with M the length of the longest
// common subsequence of the two strings and T the total length of both.
func sequenceRatio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}

	// Single-row LCS table.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return 2 * float64(prev[len(b)]) / float64(total)
}
