package matcher

import (
	"sort"
	"strings"
)

// DefaultThreshold is the minimum score accepted as a match.
const DefaultThreshold = 90.0

// Match is the best-scoring candidate for a source key.
type Match struct {
	Key   string  `json:"key"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Best scores source against every candidate and returns the highest-scoring one.
// Ties keep the earliest candidate. ok is false when there are no candidates or the
// best score is below threshold.
func Best(source string, candidates []string, threshold float64) (Match, bool) {
	best := Match{Index: -1, Score: -1}
	sortedSource := sortTokens(source)

	for i, candidate := range candidates {
		score := ratio(sortedSource, sortTokens(candidate))
		if score > best.Score {
			best = Match{Key: candidate, Index: i, Score: score}
		}
	}

	if best.Index < 0 || best.Score < threshold {
		return Match{}, false
	}
	return best, true
}

// TokenSortRatio returns the token-order-insensitive similarity of a and b in [0,100].
func TokenSortRatio(a, b string) float64 {
	return ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ratio is the normalized Indel similarity of a and b.
func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(ra, rb)) / float64(total)
}

// lcsLength returns the length of the longest common subsequence using two rows.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
