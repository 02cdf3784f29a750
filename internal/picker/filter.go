// pattern: Functional Core

package picker

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter returns the indices of candidates matching query, best match first.
// An empty query matches everything in input order.
func Filter(candidates []string, query string) []int {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		all := make([]int, len(candidates))
		for i := range candidates {
			all[i] = i
		}
		return all
	}

	ranks := fuzzy.RankFindNormalizedFold(trimmed, candidates)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	matches := make([]int, 0, len(ranks))
	for _, rank := range ranks {
		matches = append(matches, rank.OriginalIndex)
	}
	return matches
}
